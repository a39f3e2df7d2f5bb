package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	commonhttp "messagely/internal/common/http"
	"messagely/internal/common/jwtverify"
	"messagely/internal/common/logger"
	"messagely/internal/message/service"
	userdomain "messagely/internal/user/domain"
)

type sendRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

type messageResponse struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

type profileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type detailResponse struct {
	ID       int64           `json:"id"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
	ReadAt   *time.Time      `json:"read_at"`
	FromUser profileResponse `json:"from_user"`
	ToUser   profileResponse `json:"to_user"`
}

type readResponse struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

type Handler struct {
	messages *service.Service
	log      *logger.Logger
}

func NewHandler(messages *service.Service, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{messages: messages, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages",
		commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(h.send)))
	mux.HandleFunc("/api/messages/",
		commonhttp.WithTimeout(requestTimeout)(h.dispatch))
	return mux
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", nil, "")
		return
	}

	var req sendRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("send message failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	message, err := h.messages.Send(r.Context(), claims.Username, req.ToUsername, req.Body)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": messageResponse{
			ID:           message.ID,
			FromUsername: message.FromUsername,
			ToUsername:   message.ToUsername,
			Body:         message.Body,
			SentAt:       message.SentAt,
			ReadAt:       message.ReadAt,
		},
	})
}

// dispatch routes /api/messages/{id} and /api/messages/{id}/read.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMessageID, "message id is required", nil, "")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMessageID, "invalid message id", nil, "")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, id)
	case len(parts) == 2 && parts[1] == "read" && r.Method == http.MethodPost:
		h.markRead(w, r, id)
	case len(parts) == 1 || (len(parts) == 2 && parts[1] == "read"):
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id int64) {
	detail, err := h.messages.Get(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"message": detailResponse{
			ID:       detail.ID,
			Body:     detail.Body,
			SentAt:   detail.SentAt,
			ReadAt:   detail.ReadAt,
			FromUser: toProfileResponse(detail.FromUser),
			ToUser:   toProfileResponse(detail.ToUser),
		},
	})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request, id int64) {
	readAt, err := h.messages.MarkRead(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"message": readResponse{ID: id, ReadAt: readAt},
	})
}

func toProfileResponse(p userdomain.Profile) profileResponse {
	return profileResponse{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}
