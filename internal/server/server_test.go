package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-rag/internal/auth"
	"secure-rag/internal/config"
	"secure-rag/internal/models"
	"secure-rag/internal/rag"
)

type fakeService struct {
	authErr  error
	answer   *rag.Answer
	askErr   error
	gotRole  models.AccessTier
	gotQuery string
}

func (f *fakeService) Authenticate(_ context.Context, creds auth.Credentials) (models.AccessTier, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	if creds.Login != "alice" || creds.Password != "pw" {
		return "", models.ErrUnauthorized
	}
	return models.TierHR, nil
}

func (f *fakeService) AskAs(_ context.Context, role models.AccessTier, question string) (*rag.Answer, error) {
	f.gotRole, f.gotQuery = role, question
	return f.answer, f.askErr
}

func newTestServer(svc *fakeService) *Server {
	return New(svc, config.ServerConfig{Addr: ":0", RequestTimeout: time.Second})
}

func basic(login, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password))
}

func do(t *testing.T, s *Server, method, target, authorization string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	resp, body := do(t, newTestServer(&fakeService{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUI(t *testing.T) {
	resp, body := do(t, newTestServer(&fakeService{}), http.MethodGet, "/ui", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/chat?question=")
}

func TestHello(t *testing.T) {
	s := newTestServer(&fakeService{})

	resp, body := do(t, s, http.MethodGet, "/hello", basic("alice", "pw"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hr", body)

	resp, _ = do(t, s, http.MethodGet, "/hello", basic("alice", "nope"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	resp, _ = do(t, s, http.MethodGet, "/hello", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/hello", "Basic !!!")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHello_StoreFault(t *testing.T) {
	s := newTestServer(&fakeService{authErr: errors.New("db down")})
	resp, _ := do(t, s, http.MethodGet, "/hello", basic("alice", "pw"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestChat(t *testing.T) {
	svc := &fakeService{answer: &rag.Answer{
		Text:  "Alice earns 100",
		Items: []models.RetrievedItem{{ID: "csv:hr.csv:E1", Text: "full_name: Alice", Distance: 0.3}},
	}}
	s := newTestServer(svc)

	resp, body := do(t, s, http.MethodPost, "/chat?question=What+does+Alice+earn%3F", basic("alice", "pw"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TierHR, svc.gotRole)
	assert.Equal(t, "What does Alice earn?", svc.gotQuery)

	var got struct {
		Answer string `json:"answer"`
		Docs   []struct {
			ChunkID string `json:"chunk_id"`
		} `json:"docs"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "Alice earns 100", got.Answer)
	require.Len(t, got.Docs, 1)
	assert.Equal(t, "csv:hr.csv:E1", got.Docs[0].ChunkID)
}

func TestChat_NoInformation(t *testing.T) {
	s := newTestServer(&fakeService{answer: &rag.Answer{Text: models.NoInformation, NoInformation: true}})

	resp, body := do(t, s, http.MethodPost, "/chat?question=salary", basic("alice", "pw"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"answer":"There is no information"`)
	assert.NotContains(t, body, `"docs"`)
}

func TestChat_Errors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		auth   string
		err    error
		status int
	}{
		{"unauthorized", "/chat?question=x", basic("bob", "pw"), nil, http.StatusUnauthorized},
		{"missing question", "/chat", basic("alice", "pw"), nil, http.StatusBadRequest},
		{"blank question", "/chat?question=+++", basic("alice", "pw"), nil, http.StatusBadRequest},
		{"search fault", "/chat?question=x", basic("alice", "pw"), errors.Join(models.ErrSearch, errors.New("down")), http.StatusBadGateway},
		{"generation fault", "/chat?question=x", basic("alice", "pw"), errors.Join(models.ErrGeneration, errors.New("429")), http.StatusBadGateway},
		{"timeout", "/chat?question=x", basic("alice", "pw"), context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", "/chat?question=x", basic("alice", "pw"), errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&fakeService{askErr: tc.err})
			resp, _ := do(t, s, http.MethodPost, tc.target, tc.auth)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestParseBasicAuth(t *testing.T) {
	creds, ok := parseBasicAuth(basic("a", "p:w"))
	require.True(t, ok)
	assert.Equal(t, auth.Credentials{Login: "a", Password: "p:w"}, creds)

	_, ok = parseBasicAuth("Bearer token")
	assert.False(t, ok)
	_, ok = parseBasicAuth("Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")))
	assert.False(t, ok)
}
