package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garnizeh/quizflag/api"
	dbfs "github.com/garnizeh/quizflag/db"
	"github.com/garnizeh/quizflag/internal/config"
	"github.com/garnizeh/quizflag/internal/db"
)

const testAdminPassword = "correct-horse"

// setupServer stands up the full router over a test-scoped in-memory
// database and returns the server plus a valid admin token.
func setupServer(t *testing.T) (*httptest.Server, string, func()) {
	t.Helper()
	ctx := context.Background()

	t.Setenv("QF_ENV", "development")
	t.Setenv("QF_JWT_SECRET", "test-secret")
	t.Setenv("QF_ADMIN_PASSWORD", testAdminPassword)

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("config.LoadConfig: %v", err)
	}

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	d, err := db.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("db.Migrate: %v", err)
	}

	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", d))

	token := signin(t, srv, testAdminPassword)

	cleanup := func() {
		http.DefaultClient.CloseIdleConnections()
		srv.Close()
		d.Close()
	}
	return srv, token, cleanup
}

func signin(t *testing.T, srv *httptest.Server, password string) string {
	t.Helper()
	res := doJSON(t, http.MethodPost, srv.URL+"/admin/auth/signin", "", map[string]string{"password": password})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signin: expected 200 got %d", res.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode signin response: %v", err)
	}
	if body.Token == "" {
		t.Fatalf("signin returned empty token")
	}
	return body.Token
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return res
}

func decodeBody(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// createChallenge provisions a challenge through the authoring API.
func createChallenge(t *testing.T, srv *httptest.Server, token string, payload map[string]any) int64 {
	t.Helper()
	res := doJSON(t, http.MethodPost, srv.URL+"/admin/challenges", token, payload)
	if res.StatusCode != http.StatusCreated {
		res.Body.Close()
		t.Fatalf("create challenge: expected 201 got %d", res.StatusCode)
	}
	var body struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, res, &body)
	return body.ID
}
