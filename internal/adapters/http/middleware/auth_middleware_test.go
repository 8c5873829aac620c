package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/config"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo serves fixed users by ID; only lookup paths matter here
type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) Create(_ context.Context, _ *models.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, _ string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpsertByUsername(_ context.Context, user *models.User) (*models.User, error) {
	return user, nil
}

func (r *stubUserRepo) Update(_ context.Context, _ *models.User) error { return nil }

func (r *stubUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) { return false, nil }

func (r *stubUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	return nil, nil
}

const testSecret = "middleware-test-secret"

func newTestApp(t *testing.T, users map[uint]*models.User) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           testSecret,
			RefreshSecret:    "middleware-test-refresh",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	authService := services.NewAuthService(&stubUserRepo{users: users}, nil, cfg)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware(authService), func(c *fiber.Ctx) error {
		return c.SendString("ok:" + CurrentUser(c).Username)
	})
	app.Get("/admin", AuthMiddleware(authService), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("admin-ok")
	})
	app.Get("/risk", AuthMiddleware(authService),
		RequireRole(domain.RoleAdmin, domain.RoleRiskOfficer),
		func(c *fiber.Ctx) error {
			return c.SendString("risk-ok")
		})
	return app
}

func accessTokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(user.ID, user.Username, string(user.Role), testSecret, 15)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	app := newTestApp(t, map[uint]*models.User{})

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	user := &models.User{ID: 1, Username: "sara", Role: domain.RoleViewer, IsActive: true}
	app := newTestApp(t, map[uint]*models.User{1: user})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	user := &models.User{ID: 1, Username: "sara", Role: domain.RoleViewer, IsActive: true}
	app := newTestApp(t, map[uint]*models.User{1: user})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Cookie", "access_token="+accessTokenFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareBlocksInactiveUser(t *testing.T) {
	user := &models.User{ID: 2, Username: "former", Role: domain.RoleViewer, IsActive: false}
	app := newTestApp(t, map[uint]*models.User{2: user})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleEnforcesStoredRole(t *testing.T) {
	viewer := &models.User{ID: 1, Username: "viewer1", Role: domain.RoleViewer, IsActive: true}
	officer := &models.User{ID: 2, Username: "officer1", Role: domain.RoleRiskOfficer, IsActive: true}
	admin := &models.User{ID: 3, Username: "admin", Role: domain.RoleAdmin, IsActive: true}
	app := newTestApp(t, map[uint]*models.User{1: viewer, 2: officer, 3: admin})

	tests := []struct {
		name   string
		user   *models.User
		path   string
		status int
	}{
		{"viewer blocked from admin route", viewer, "/admin", fiber.StatusForbidden},
		{"officer blocked from admin route", officer, "/admin", fiber.StatusForbidden},
		{"admin allowed on admin route", admin, "/admin", fiber.StatusOK},
		{"viewer blocked from risk route", viewer, "/risk", fiber.StatusForbidden},
		{"officer allowed on risk route", officer, "/risk", fiber.StatusOK},
		{"admin allowed on risk route", admin, "/risk", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tt.user))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireRoleUsesStoredRoleNotClaims(t *testing.T) {
	// Token was minted while the user was an admin; the store now says viewer
	user := &models.User{ID: 1, Username: "demoted", Role: domain.RoleViewer, IsActive: true}
	app := newTestApp(t, map[uint]*models.User{1: user})

	token, err := jwt.GenerateAccessToken(1, "demoted", string(domain.RoleAdmin), testSecret, 15)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
