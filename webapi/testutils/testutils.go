// Package testutils runs the HTTP adapter against the in-memory store.
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/monegment/monegment/infra/eventbus"
	"github.com/monegment/monegment/internal/fixtures/memory"
	"github.com/monegment/monegment/pkg/app"
	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/service/extract"
	"github.com/monegment/monegment/webapi"
	"github.com/monegment/monegment/webapi/common"
	"github.com/stretchr/testify/suite"
)

const (
	// UserID is the caller of every request made with Token.
	UserID int64 = 1
	// VIPUserID may use media extraction.
	VIPUserID int64 = 7
)

// APITestSuite serves the full route table over a fresh in-memory store per test.
type APITestSuite struct {
	suite.Suite
	Store *memory.Store
	App   *app.App
	Fiber *fiber.App
	Token string
}

// TestConfig is the configuration every API test runs with.
func TestConfig() *config.App {
	return &config.App{
		Env:     "test",
		Auth:    &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		Advisor: &config.Advisor{Buffer: 50_000, Timezone: "UTC"},
		Access:  &config.Access{VIPIDs: []int64{VIPUserID}},
	}
}

func (s *APITestSuite) SetupTest() {
	s.Build(nil)
}

// Build recreates the app around extractor, which may be nil.
func (s *APITestSuite) Build(extractor extract.Extractor) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Store = memory.NewStore()
	s.App = app.New(&app.Deps{
		Uow:       s.Store.UoW(),
		EventBus:  eventbus.NewWithMemory(quiet),
		Extractor: extractor,
		Logger:    quiet,
	}, TestConfig())
	s.Fiber = webapi.SetupApp(s.App)
	s.Token = s.TokenFor(UserID)
}

// TokenFor issues a bearer token for userID.
func (s *APITestSuite) TokenFor(userID int64) string {
	token, err := s.App.AuthService.GenerateToken(s.T().Context(), userID)
	s.Require().NoError(err)
	return token
}

// MakeRequest sends a JSON request. Empty body and token are left out.
func (s *APITestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return s.Do(req, token)
}

// Do sends req with token.
func (s *APITestSuite) Do(req *http.Request, token string) *http.Response {
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.Fiber.Test(req, -1)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads the success envelope and unmarshals its data into out.
func (s *APITestSuite) Decode(resp *http.Response, out any) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	if out != nil {
		s.Require().NoError(json.Unmarshal(env.Data, out))
	}
}

// Problem reads a problem details body.
func (s *APITestSuite) Problem(resp *http.Response) common.ProblemDetails {
	var pd common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}
