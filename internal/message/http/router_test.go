package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authservice "messagely/internal/auth/service"
	"messagely/internal/common/clock"
	"messagely/internal/common/jwtverify"
	"messagely/internal/common/logger"
	"messagely/internal/message/domain"
	messagerepo "messagely/internal/message/repository"
	"messagely/internal/message/service"
	userdomain "messagely/internal/user/domain"
)

const testSecret = "test-secret-value-at-least-32-bytes!"

type stubMessageRepo struct {
	insertFunc   func(ctx context.Context, fromUsername, toUsername, body string, sentAt time.Time) (domain.Message, error)
	findByIDFunc func(ctx context.Context, id int64) (domain.Detail, error)
	markReadFunc func(ctx context.Context, id int64, readAt time.Time) error
}

func (r *stubMessageRepo) SelectBySender(ctx context.Context, username string) ([]domain.SentMessage, error) {
	return []domain.SentMessage{}, nil
}

func (r *stubMessageRepo) SelectByRecipient(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	return []domain.ReceivedMessage{}, nil
}

func (r *stubMessageRepo) Insert(ctx context.Context, fromUsername, toUsername, body string, sentAt time.Time) (domain.Message, error) {
	if r.insertFunc != nil {
		return r.insertFunc(ctx, fromUsername, toUsername, body, sentAt)
	}
	return domain.Message{
		ID:           1,
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       sentAt,
	}, nil
}

func (r *stubMessageRepo) FindByID(ctx context.Context, id int64) (domain.Detail, error) {
	if r.findByIDFunc != nil {
		return r.findByIDFunc(ctx, id)
	}
	return domain.Detail{}, messagerepo.ErrMessageNotFound
}

func (r *stubMessageRepo) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	if r.markReadFunc != nil {
		return r.markReadFunc(ctx, id, readAt)
	}
	return messagerepo.ErrMessageNotFound
}

type fixedIDGenerator struct{}

func (g *fixedIDGenerator) NewID() (string, error) {
	return "token-id-1", nil
}

func setupHandler(t *testing.T, repo *stubMessageRepo) (http.Handler, string) {
	t.Helper()

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	clk := clock.NewRealClock()
	messages := service.NewService(repo, clk, log)
	handler := jwtverify.Middleware(testSecret, log)(NewHandler(messages, 5*time.Second, log))

	issuer := authservice.NewTokenIssuer(testSecret, &fixedIDGenerator{}, time.Hour, clk)
	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	return handler, token
}

func doRequest(handler http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendEndpoint(t *testing.T) {
	handler, token := setupHandler(t, &stubMessageRepo{})

	body, _ := json.Marshal(map[string]string{"to_username": "bob", "body": "hello"})
	rec := doRequest(handler, http.MethodPost, "/api/messages", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message struct {
			ID           int64  `json:"id"`
			FromUsername string `json:"from_username"`
			ToUsername   string `json:"to_username"`
			Body         string `json:"body"`
		} `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message.FromUsername != "alice" {
		t.Errorf("expected sender from token subject, got %s", resp.Message.FromUsername)
	}
	if resp.Message.ToUsername != "bob" || resp.Message.Body != "hello" {
		t.Errorf("unexpected message: %+v", resp.Message)
	}
}

func TestSendEndpoint_NoToken(t *testing.T) {
	handler, _ := setupHandler(t, &stubMessageRepo{})

	body, _ := json.Marshal(map[string]string{"to_username": "bob", "body": "hello"})
	rec := doRequest(handler, http.MethodPost, "/api/messages", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSendEndpoint_UnknownRecipient(t *testing.T) {
	repo := &stubMessageRepo{
		insertFunc: func(ctx context.Context, fromUsername, toUsername, body string, sentAt time.Time) (domain.Message, error) {
			return domain.Message{}, messagerepo.ErrUnknownUsername
		},
	}
	handler, token := setupHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"to_username": "ghost", "body": "hello"})
	rec := doRequest(handler, http.MethodPost, "/api/messages", token, body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if env.Code != "RECIPIENT_NOT_FOUND" {
		t.Errorf("expected RECIPIENT_NOT_FOUND, got %s", env.Code)
	}
}

func TestSendEndpoint_EmptyBody(t *testing.T) {
	handler, token := setupHandler(t, &stubMessageRepo{})

	body, _ := json.Marshal(map[string]string{"to_username": "bob", "body": ""})
	rec := doRequest(handler, http.MethodPost, "/api/messages", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetEndpoint(t *testing.T) {
	sentAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubMessageRepo{
		findByIDFunc: func(ctx context.Context, id int64) (domain.Detail, error) {
			return domain.Detail{
				ID:       id,
				Body:     "hello",
				SentAt:   sentAt,
				FromUser: userdomain.Profile{Username: "alice"},
				ToUser:   userdomain.Profile{Username: "bob"},
			}, nil
		},
	}
	handler, token := setupHandler(t, repo)

	rec := doRequest(handler, http.MethodGet, "/api/messages/7", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message struct {
			ID       int64 `json:"id"`
			FromUser struct {
				Username string `json:"username"`
			} `json:"from_user"`
			ToUser struct {
				Username string `json:"username"`
			} `json:"to_user"`
		} `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message.ID != 7 {
		t.Errorf("expected id 7, got %d", resp.Message.ID)
	}
	if resp.Message.FromUser.Username != "alice" || resp.Message.ToUser.Username != "bob" {
		t.Errorf("unexpected counterpart profiles: %+v", resp.Message)
	}
}

func TestGetEndpoint_NotFound(t *testing.T) {
	handler, token := setupHandler(t, &stubMessageRepo{})

	rec := doRequest(handler, http.MethodGet, "/api/messages/42", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetEndpoint_InvalidID(t *testing.T) {
	handler, token := setupHandler(t, &stubMessageRepo{})

	rec := doRequest(handler, http.MethodGet, "/api/messages/abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarkReadEndpoint(t *testing.T) {
	var stamped time.Time
	repo := &stubMessageRepo{
		markReadFunc: func(ctx context.Context, id int64, readAt time.Time) error {
			stamped = readAt
			return nil
		},
	}
	handler, token := setupHandler(t, repo)

	rec := doRequest(handler, http.MethodPost, "/api/messages/7/read", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message struct {
			ID     int64     `json:"id"`
			ReadAt time.Time `json:"read_at"`
		} `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message.ID != 7 {
		t.Errorf("expected id 7, got %d", resp.Message.ID)
	}
	if !resp.Message.ReadAt.Equal(stamped) {
		t.Errorf("expected read_at %v, got %v", stamped, resp.Message.ReadAt)
	}
}

func TestMarkReadEndpoint_WrongMethod(t *testing.T) {
	handler, token := setupHandler(t, &stubMessageRepo{})

	rec := doRequest(handler, http.MethodGet, "/api/messages/7/read", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
