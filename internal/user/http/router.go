package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "messagely/internal/common/http"
	"messagely/internal/common/logger"
	messagedomain "messagely/internal/message/domain"
	messageservice "messagely/internal/message/service"
	userdomain "messagely/internal/user/domain"
	userservice "messagely/internal/user/service"
)

type profileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type accountResponse struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type sentMessageResponse struct {
	ID     int64           `json:"id"`
	Body   string          `json:"body"`
	SentAt time.Time       `json:"sent_at"`
	ReadAt *time.Time      `json:"read_at"`
	ToUser profileResponse `json:"to_user"`
}

type receivedMessageResponse struct {
	ID       int64           `json:"id"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
	ReadAt   *time.Time      `json:"read_at"`
	FromUser profileResponse `json:"from_user"`
}

type Handler struct {
	users    *userservice.Service
	messages *messageservice.Service
	log      *logger.Logger
}

func NewHandler(
	users *userservice.Service,
	messages *messageservice.Service,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{users: users, messages: messages, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/users",
		commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(requestTimeout)(h.list)))
	mux.HandleFunc("/api/users/",
		commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(requestTimeout)(h.dispatch)))
	return mux
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.ListAll(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"users": toProfileResponses(profiles),
	})
}

// dispatch routes /api/users/{username}, /{username}/to and /{username}/from.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeUsernameRequired, "username is required", nil, "")
		return
	}
	username := parts[0]

	switch {
	case len(parts) == 1:
		h.get(w, r, username)
	case len(parts) == 2 && parts[1] == "to":
		h.receivedBy(w, r, username)
	case len(parts) == 2 && parts[1] == "from":
		h.sentBy(w, r, username)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, username string) {
	account, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"user": accountResponse{
			Username:    account.Username,
			FirstName:   account.FirstName,
			LastName:    account.LastName,
			Phone:       account.Phone,
			JoinAt:      account.JoinAt,
			LastLoginAt: account.LastLoginAt,
		},
	})
}

func (h *Handler) receivedBy(w http.ResponseWriter, r *http.Request, username string) {
	messages, err := h.messages.ReceivedBy(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]receivedMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, receivedMessageResponse{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: toProfileResponse(m.FromUser),
		})
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"messages": resp})
}

func (h *Handler) sentBy(w http.ResponseWriter, r *http.Request, username string) {
	messages, err := h.messages.SentBy(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"messages": toSentMessageResponses(messages),
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

func toProfileResponses(profiles []userdomain.Profile) []profileResponse {
	result := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, toProfileResponse(p))
	}
	return result
}

func toSentMessageResponses(messages []messagedomain.SentMessage) []sentMessageResponse {
	result := make([]sentMessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, sentMessageResponse{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: toProfileResponse(m.ToUser),
		})
	}
	return result
}
