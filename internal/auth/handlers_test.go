package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newAuthApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface, *Service) {
	t.Helper()
	mock := newMockPool(t)
	svc := NewService("secret", mock)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)
	return app, mock, svc
}

func authRequest(t *testing.T, app *fiber.App, method, path string, body any, header map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func TestRegisterHandler(t *testing.T) {
	app, mock, _ := newAuthApp(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO creators`).
		WithArgs(pgxmock.AnyArg(), "amira@example.com", "Amira", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp := authRequest(t, app, http.MethodPost, "/auth/register", RegisterRequest{
		Email:       "amira@example.com",
		DisplayName: "Amira",
		Password:    "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var body struct {
		Creator Creator       `json:"creator"`
		Tokens  TokenResponse `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Creator.Email != "amira@example.com" || body.Tokens.AccessToken == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := authRequest(t, app, http.MethodPost, "/auth/register", RegisterRequest{Email: "amira@example.com"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginHandler(t *testing.T) {
	app, mock, _ := newAuthApp(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, email, display_name, password_hash`).
		WithArgs("amira@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "is_verified", "created_at", "updated_at"}).
			AddRow("creator-1", "amira@example.com", "Amira", string(hash), true, now, now))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp := authRequest(t, app, http.MethodPost, "/auth/login", LoginRequest{Email: "amira@example.com", Password: "hunter22"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil || tokens.AccessToken == "" {
		t.Fatalf("unexpected tokens: %+v %v", tokens, err)
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	app, mock, _ := newAuthApp(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, email, display_name, password_hash`).
		WithArgs("amira@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "is_verified", "created_at", "updated_at"}).
			AddRow("creator-1", "amira@example.com", "Amira", string(hash), true, now, now))

	resp := authRequest(t, app, http.MethodPost, "/auth/login", LoginRequest{Email: "amira@example.com", Password: "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRefreshHandler(t *testing.T) {
	app, mock, svc := newAuthApp(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	tokens, err := svc.GenerateTokens(context.Background(), "creator-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT creator_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"creator_id", "expires_at"}).
			AddRow("creator-1", time.Now().Add(time.Hour)))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp := authRequest(t, app, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRefreshHandlerMissingToken(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := authRequest(t, app, http.MethodPost, "/auth/refresh", RefreshRequest{}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestVerifyHandler(t *testing.T) {
	app, mock, svc := newAuthApp(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	tokens, err := svc.GenerateTokens(context.Background(), "creator-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	resp := authRequest(t, app, http.MethodGet, "/auth/jwt/verify", nil,
		map[string]string{"Authorization": "Bearer " + tokens.AccessToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		CreatorID string `json:"creator_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.CreatorID != "creator-1" {
		t.Fatalf("unexpected body: %+v %v", body, err)
	}
}

func TestVerifyHandlerMissingToken(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := authRequest(t, app, http.MethodGet, "/auth/jwt/verify", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
