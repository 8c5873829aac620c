package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"amana-grc/internal/adapters/directory"
	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/config"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpsertByUsername(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetByUsername(ctx, user.Username)
	if err == nil {
		existing.Email = user.Email
		existing.FullNameEN = user.FullNameEN
		existing.FullNameAR = user.FullNameAR
		existing.Role = user.Role
		existing.IsLDAPUser = user.IsLDAPUser
		existing.LastLoginAt = user.LastLoginAt
		return existing, nil
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	var all []*models.User
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, int64(len(all)), nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	counts := map[domain.Role]int64{}
	for _, user := range r.users {
		if user.IsActive {
			counts[user.Role]++
		}
	}
	return counts, nil
}

// fakeDirectory scripts the directory's answer per username
type fakeDirectory struct {
	entries map[string]*directory.Entry
	err     error
	calls   int
}

func (d *fakeDirectory) Authenticate(_ context.Context, username, _ string) (*directory.Entry, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	entry, ok := d.entries[username]
	if !ok {
		return nil, errors.New("bind failed: invalid credentials")
	}
	return entry, nil
}

func testConfig(ldapEnabled bool) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		LDAP: config.LDAPConfig{Enabled: ldapEnabled},
	}
}

func seedLocalUser(t *testing.T, repo *fakeUserRepo, username, pass string, role domain.Role, active bool) *models.User {
	t.Helper()
	hash, err := password.Hash(pass)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@amana.sa",
		Password: hash,
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLoginDirectoryFirst(t *testing.T) {
	repo := newFakeUserRepo()
	dir := &fakeDirectory{entries: map[string]*directory.Entry{
		"sara": {
			Username:    "sara",
			Email:       "sara@amana.sa",
			DisplayName: "Sara Alghamdi",
			Groups:      []string{"cn=risk-team,ou=groups"},
		},
	}}
	svc := NewAuthService(repo, dir, testConfig(true))

	resp, err := svc.Login(context.Background(), &LoginInput{Username: "sara", Password: "whatever"})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "sara", resp.User.Username)
	assert.Equal(t, domain.RoleRiskOfficer, resp.User.Role)
	assert.True(t, resp.User.IsLDAPUser)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// A shadow record was created without any password material
	stored, err := repo.GetByUsername(context.Background(), "sara")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginDirectoryRoleResyncOnEachLogin(t *testing.T) {
	repo := newFakeUserRepo()
	dir := &fakeDirectory{entries: map[string]*directory.Entry{
		"omar": {Username: "omar", Groups: []string{"cn=audit-dept"}},
	}}
	svc := NewAuthService(repo, dir, testConfig(true))

	_, err := svc.Login(context.Background(), &LoginInput{Username: "omar", Password: "pw"})
	require.NoError(t, err)

	stored, _ := repo.GetByUsername(context.Background(), "omar")
	assert.Equal(t, domain.RoleAuditor, stored.Role)

	// Group membership changed in the directory; next login picks it up
	dir.entries["omar"].Groups = []string{"cn=grc-admins"}
	_, err = svc.Login(context.Background(), &LoginInput{Username: "omar", Password: "pw"})
	require.NoError(t, err)

	stored, _ = repo.GetByUsername(context.Background(), "omar")
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestLoginFallsBackToLocalWhenDirectoryRejects(t *testing.T) {
	repo := newFakeUserRepo()
	seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)

	dir := &fakeDirectory{entries: map[string]*directory.Entry{}}
	svc := NewAuthService(repo, dir, testConfig(true))

	resp, err := svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "S3curePass!"})
	require.NoError(t, err)

	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, "admin", resp.User.Username)
	assert.False(t, resp.User.IsLDAPUser)
}

func TestLoginFallsBackWhenDirectoryUnreachable(t *testing.T) {
	repo := newFakeUserRepo()
	seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)

	dir := &fakeDirectory{err: errors.New("dial tcp: connection refused")}
	svc := NewAuthService(repo, dir, testConfig(true))

	resp, err := svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "S3curePass!"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Username)
}

func TestLoginSkipsDirectoryWhenDisabled(t *testing.T) {
	repo := newFakeUserRepo()
	seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)

	dir := &fakeDirectory{entries: map[string]*directory.Entry{
		"admin": {Username: "admin"},
	}}
	svc := NewAuthService(repo, dir, testConfig(false))

	_, err := svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "S3curePass!"})
	require.NoError(t, err)
	assert.Equal(t, 0, dir.calls)
}

func TestLoginBothSourcesRefuse(t *testing.T) {
	repo := newFakeUserRepo()
	seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)

	dir := &fakeDirectory{entries: map[string]*directory.Entry{}}
	svc := NewAuthService(repo, dir, testConfig(true))

	tests := []struct {
		name     string
		username string
		pass     string
	}{
		{"wrong password", "admin", "wrong-password"},
		{"unknown user", "ghost", "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &LoginInput{Username: tt.username, Password: tt.pass})
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestLoginDirectoryUserCannotUseLocalPath(t *testing.T) {
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &models.User{
		Username:   "sara",
		Email:      "sara@amana.sa",
		Role:       domain.RoleRiskOfficer,
		IsActive:   true,
		IsLDAPUser: true,
	}))

	// Directory is down, so only the local path remains. The shadow record
	// has no hash and must not match any password.
	dir := &fakeDirectory{err: errors.New("connection refused")}
	svc := NewAuthService(repo, dir, testConfig(true))

	_, err := svc.Login(context.Background(), &LoginInput{Username: "sara", Password: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginInactiveUserGetsGenericError(t *testing.T) {
	repo := newFakeUserRepo()
	seedLocalUser(t, repo, "former", "S3curePass!", domain.RoleViewer, false)

	svc := NewAuthService(repo, nil, testConfig(false))

	// Correct password on a deactivated account must be indistinguishable
	// from a wrong password.
	_, err := svc.Login(context.Background(), &LoginInput{Username: "former", Password: "S3curePass!"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, domain.ErrUserInactive)
}

func TestLoginInactiveDirectoryUserGetsGenericError(t *testing.T) {
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &models.User{
		Username:   "sara",
		Email:      "sara@amana.sa",
		Role:       domain.RoleRiskOfficer,
		IsActive:   false,
		IsLDAPUser: true,
	}))

	dir := &fakeDirectory{entries: map[string]*directory.Entry{
		"sara": {Username: "sara", Groups: []string{"risk"}},
	}}
	svc := NewAuthService(repo, dir, testConfig(true))

	_, err := svc.Login(context.Background(), &LoginInput{Username: "sara", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, domain.ErrUserInactive)
}

func TestLoginUpdatesLastLoginLocally(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)
	require.Nil(t, user.LastLoginAt)

	svc := NewAuthService(repo, nil, testConfig(false))
	_, err := svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "S3curePass!"})
	require.NoError(t, err)

	stored, _ := repo.GetByID(context.Background(), user.ID)
	require.NotNil(t, stored.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *stored.LastLoginAt, 5*time.Second)
}

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   domain.Role
	}{
		{"admin group", []string{"cn=grc-admins,ou=groups"}, domain.RoleAdmin},
		{"risk group", []string{"cn=risk-management"}, domain.RoleRiskOfficer},
		{"audit group", []string{"cn=internal-audit"}, domain.RoleAuditor},
		{"case insensitive", []string{"CN=GRC-ADMINS"}, domain.RoleAdmin},
		{"admin wins over risk", []string{"cn=risk-team", "cn=admins"}, domain.RoleAdmin},
		{"no matching group", []string{"cn=employees", "cn=riyadh-office"}, domain.RoleViewer},
		{"no groups", nil, domain.RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRole(tt.groups))
		})
	}
}

func TestCreateLocalUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testConfig(false))

	user, err := svc.CreateLocalUser(context.Background(), &CreateUserInput{
		Username: "officer1",
		Email:    "officer1@amana.sa",
		Password: "S3curePass!",
		Role:     domain.RoleRiskOfficer,
	})
	require.NoError(t, err)
	assert.True(t, user.HasLocalPassword())
	assert.NotEqual(t, "S3curePass!", user.Password)

	// Duplicate username is rejected
	_, err = svc.CreateLocalUser(context.Background(), &CreateUserInput{
		Username: "officer1",
		Email:    "other@amana.sa",
		Password: "S3curePass!",
		Role:     domain.RoleViewer,
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Unknown role is rejected
	_, err = svc.CreateLocalUser(context.Background(), &CreateUserInput{
		Username: "officer2",
		Email:    "officer2@amana.sa",
		Password: "S3curePass!",
		Role:     domain.Role("SUPERUSER"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedLocalUser(t, repo, "admin", "S3curePass!", domain.RoleAdmin, true)

	svc := NewAuthService(repo, nil, testConfig(false))
	resp, err := svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "S3curePass!"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	// Deactivation invalidates the exchange even though the token is valid
	user.IsActive = false
	_, err = svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUserInactive)

	_, err = svc.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthenticateUsesStoredState(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedLocalUser(t, repo, "viewer1", "S3curePass!", domain.RoleViewer, true)

	svc := NewAuthService(repo, nil, testConfig(false))
	resp, err := svc.Login(context.Background(), &LoginInput{Username: "viewer1", Password: "S3curePass!"})
	require.NoError(t, err)

	resolved, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// Role change takes effect immediately, no token reissue needed
	user.Role = domain.RoleAuditor
	resolved, err = svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAuditor, resolved.Role)

	user.IsActive = false
	_, err = svc.Authenticate(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}
