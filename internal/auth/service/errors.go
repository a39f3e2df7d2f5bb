package service

import (
	"net/http"

	commonerrors "messagely/internal/common/errors"
)

var ErrInvalidCredentials = commonerrors.NewDomainError(
	"INVALID_CREDENTIALS",
	commonerrors.CategoryUnauthorized,
	http.StatusUnauthorized,
	"invalid username/password",
)
