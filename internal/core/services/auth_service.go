package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"amana-grc/internal/adapters/directory"
	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/config"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/pkg/jwt"
	"amana-grc/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errNotApplicable signals that a credential source cannot decide this login
// and the next source in the chain should get a turn.
var errNotApplicable = errors.New("credential source not applicable")

// roleRule maps a directory group name fragment to an application role.
// Rules are evaluated in order; the first match wins.
type roleRule struct {
	fragment string
	role     domain.Role
}

var roleRules = []roleRule{
	{"admin", domain.RoleAdmin},
	{"risk", domain.RoleRiskOfficer},
	{"audit", domain.RoleAuditor},
}

// DeriveRole maps directory group memberships to an application role.
// Matching is case-insensitive substring over each group name. Users with no
// matching group get the viewer role.
func DeriveRole(groups []string) domain.Role {
	for _, rule := range roleRules {
		for _, group := range groups {
			if strings.Contains(strings.ToLower(group), rule.fragment) {
				return rule.role
			}
		}
	}
	return domain.RoleViewer
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo  repositories.UserRepository
	dirClient DirectoryClient
	cfg       *config.Config
}

// NewAuthService creates a new auth service. dirClient may be nil when the
// directory strategy is disabled.
func NewAuthService(userRepo repositories.UserRepository, dirClient DirectoryClient, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		dirClient: dirClient,
		cfg:       cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserInput represents admin-created local account input
type CreateUserInput struct {
	Username   string      `json:"username" validate:"required,min=3,max=50"`
	Email      string      `json:"email" validate:"required,email"`
	FullNameEN string      `json:"full_name_en"`
	FullNameAR string      `json:"full_name_ar"`
	Password   string      `json:"password" validate:"required,min=8"`
	Role       domain.Role `json:"role" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Login authenticates a user. The directory is consulted first; when it
// cannot decide (disabled, unreachable, or it rejects the bind), the local
// password store gets a turn. Every refused login, including a deactivated
// account, surfaces as the same generic credentials error so a caller cannot
// tell which accounts exist or which were disabled.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	strategies := []func(ctx context.Context, username, pass string) (*models.User, error){
		s.directoryStrategy,
		s.localStrategy,
	}

	for _, strategy := range strategies {
		user, err := strategy(ctx, input.Username, input.Password)
		if errors.Is(err, errNotApplicable) {
			continue
		}
		if errors.Is(err, domain.ErrUserInactive) {
			log.Printf("Login refused for deactivated account: %s", input.Username)
			return nil, domain.ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}

		tokens, err := s.generateTokens(user)
		if err != nil {
			return nil, err
		}

		log.Printf("User logged in: %s (ldap=%t)", user.Username, user.IsLDAPUser)

		return &AuthResponse{
			User:         user.ToResponse(),
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}, nil
	}

	return nil, domain.ErrInvalidCredentials
}

// directoryStrategy authenticates against the LDAP directory and syncs the
// user's local shadow record. Directory failures of any kind yield the turn
// to the next strategy; only database errors propagate.
func (s *AuthService) directoryStrategy(ctx context.Context, username, pass string) (*models.User, error) {
	if !s.cfg.LDAP.Enabled || s.dirClient == nil {
		return nil, errNotApplicable
	}

	entry, err := s.dirClient.Authenticate(ctx, username, pass)
	if err != nil {
		log.Printf("Directory auth failed for %s: %v", username, err)
		return nil, errNotApplicable
	}

	user, err := s.syncDirectoryUser(ctx, entry)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return user, nil
}

// localStrategy verifies the password against the stored bcrypt hash of an
// active account. Accounts without a hash (directory-only users) and
// deactivated accounts cannot log in locally.
func (s *AuthService) localStrategy(ctx context.Context, username, pass string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotApplicable
		}
		return nil, err
	}

	if !user.HasLocalPassword() {
		return nil, errNotApplicable
	}

	if !user.IsActive {
		return nil, errNotApplicable
	}

	if !password.Verify(pass, user.Password) {
		return nil, errNotApplicable
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// syncDirectoryUser upserts the local record for a directory-authenticated
// user. The role is re-derived from groups on every login, so a directory
// group change takes effect immediately. The directory password is never
// stored.
func (s *AuthService) syncDirectoryUser(ctx context.Context, entry *directory.Entry) (*models.User, error) {
	now := time.Now()

	email := entry.Email
	if email == "" {
		email = entry.Username + "@ldap.local"
	}

	user := &models.User{
		Username:    entry.Username,
		Email:       email,
		FullNameEN:  entry.DisplayName,
		Role:        DeriveRole(entry.Groups),
		IsActive:    true,
		IsLDAPUser:  true,
		LastLoginAt: &now,
	}

	return s.userRepo.UpsertByUsername(ctx, user)
}

// CreateLocalUser creates a password-backed account, admin only
func (s *AuthService) CreateLocalUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if !password.Validate(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   input.Username,
		Email:      input.Email,
		FullNameEN: input.FullNameEN,
		FullNameAR: input.FullNameAR,
		Password:   hash,
		Role:       input.Role,
		IsActive:   true,
		IsLDAPUser: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("Local user created: %s (%s)", user.Username, user.Role)
	return user, nil
}

// RefreshToken issues a new token pair from a valid refresh token.
// Refresh tokens are self-contained; nothing is looked up besides the user,
// whose current state gates the exchange.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Authenticate resolves an access token to the live user record. The token
// carries a role claim, but authorization always uses the stored role so a
// role change does not wait for token expiry.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		string(user.Role),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
