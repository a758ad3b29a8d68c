package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/config"
	"github.com/spec-kit/researcher-directory/internal/domain"
	"github.com/spec-kit/researcher-directory/internal/ratelimit"
	"github.com/spec-kit/researcher-directory/internal/service"
	apperrors "github.com/spec-kit/researcher-directory/pkg/util"
)

// fakeResearcherRepo is an in-memory repository that counts lookups so tests
// can assert whether credential logic ran at all.
type fakeResearcherRepo struct {
	byEmail      map[string]*domain.Researcher
	byID         map[string]*domain.Researcher
	emailLookups int
}

func newFakeResearcherRepo() *fakeResearcherRepo {
	return &fakeResearcherRepo{
		byEmail: make(map[string]*domain.Researcher),
		byID:    make(map[string]*domain.Researcher),
	}
}

func (f *fakeResearcherRepo) add(r *domain.Researcher) {
	f.byEmail[r.Email] = r
	f.byID[r.ID] = r
}

func (f *fakeResearcherRepo) Create(_ context.Context, r *domain.Researcher) error {
	r.ID = "gen-" + r.Username
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.add(r)
	return nil
}

func (f *fakeResearcherRepo) Update(_ context.Context, r *domain.Researcher) error {
	if _, ok := f.byID[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.add(r)
	return nil
}

func (f *fakeResearcherRepo) Delete(_ context.Context, id string) error {
	r, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(f.byEmail, r.Email)
	delete(f.byID, id)
	return nil
}

func (f *fakeResearcherRepo) GetByID(_ context.Context, id string) (*domain.Researcher, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResearcherRepo) GetByEmail(_ context.Context, email string) (*domain.Researcher, error) {
	f.emailLookups++
	if r, ok := f.byEmail[email]; ok {
		return r, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResearcherRepo) List(_ context.Context, _, _ int) ([]*domain.Researcher, error) {
	out := make([]*domain.Researcher, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResearcherRepo) Search(_ context.Context, _ string, _ int) ([]*domain.Researcher, error) {
	return nil, nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "handler-test-secret",
			SessionTTLMinutes: 7 * 24 * 60,
			BcryptCost:        4,
		},
	}
}

func newLoginApp(t *testing.T, repo *fakeResearcherRepo, loginMax int) (*fiber.App, *auth.SessionTransport) {
	t.Helper()

	cfg := testConfig()
	authService := service.NewAuthService(cfg, service.AuthDependencies{ResearcherRepo: repo})
	sessions := auth.NewSessionTransport(false, cfg.Auth.SessionTTL())
	handler := NewAuthHandler(authService, sessions)

	limiter := ratelimit.NewMemory(ratelimit.Limits{ratelimit.ClassLogin: loginMax}, time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
		},
	})
	app.Post("/api/auth/login", ratelimit.Middleware(limiter, ratelimit.ClassLogin), handler.Login)
	return app, sessions
}

func seedResearcher(t *testing.T, repo *fakeResearcherRepo, password string) *domain.Researcher {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	r := &domain.Researcher{
		ID:           "res-1",
		Email:        "grace@example.edu",
		Username:     "grace",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		FirstName:    "Grace",
		LastName:     "Hopper",
		Status:       domain.ResearcherStatusActive,
	}
	repo.add(r)
	return r
}

func postLogin(t *testing.T, app *fiber.App, addr, email, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", addr)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLogin_RateLimitStopsCredentialLogic(t *testing.T) {
	t.Parallel()

	repo := newFakeResearcherRepo()
	seedResearcher(t, repo, "correct-horse")
	app, _ := newLoginApp(t, repo, 5)

	// First five attempts reach credential logic and fail on the password.
	for i := 0; i < 5; i++ {
		resp := postLogin(t, app, "1.2.3.4", "grace@example.edu", "wrong")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}
	require.Equal(t, 5, repo.emailLookups)

	// The sixth is throttled before any lookup happens.
	resp := postLogin(t, app, "1.2.3.4", "grace@example.edu", "wrong")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, 5, repo.emailLookups)

	// A different client address is unaffected.
	resp = postLogin(t, app, "5.6.7.8", "grace@example.edu", "correct-horse")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_SuccessSetsSessionCookie(t *testing.T) {
	t.Parallel()

	repo := newFakeResearcherRepo()
	seedResearcher(t, repo, "correct-horse")
	app, _ := newLoginApp(t, repo, 5)

	resp := postLogin(t, app, "1.2.3.4", "grace@example.edu", "correct-horse")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie missing")
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	var body struct {
		Data struct {
			User struct {
				Email    string `json:"email"`
				FullName string `json:"full_name"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "grace@example.edu", body.Data.User.Email)
	require.Equal(t, "Grace Hopper", body.Data.User.FullName)
}

func TestLogin_UnknownEmailAndSuspendedCollapseToUnauthorized(t *testing.T) {
	t.Parallel()

	repo := newFakeResearcherRepo()
	r := seedResearcher(t, repo, "correct-horse")
	app, _ := newLoginApp(t, repo, 100)

	resp := postLogin(t, app, "1.2.3.4", "nobody@example.edu", "whatever")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	r.Status = domain.ResearcherStatusSuspended
	resp = postLogin(t, app, "1.2.3.4", "grace@example.edu", "correct-horse")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
