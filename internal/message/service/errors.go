package service

import (
	"net/http"

	commonerrors "messagely/internal/common/errors"
)

var (
	ErrMessageNotFound = commonerrors.NewDomainError(
		"MESSAGE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"message not found",
	)

	ErrRecipientNotFound = commonerrors.NewDomainError(
		"RECIPIENT_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"recipient does not exist",
	)

	ErrEmptyBody = commonerrors.NewDomainError(
		"EMPTY_BODY",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"message body is empty",
	)
)
