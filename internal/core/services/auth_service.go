package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"smartcart-auth/internal/adapters/persistence/models"
	"smartcart-auth/internal/adapters/persistence/repositories"
	"smartcart-auth/internal/config"
	"smartcart-auth/internal/core/domain"
	"smartcart-auth/internal/pkg/jwt"
	"smartcart-auth/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxUsernameAttempts bounds the rejection-sampling loop for unique
// usernames. The numeric ranges are large enough that hitting the cap
// means the space is effectively full.
const maxUsernameAttempts = 10000

// AuthService handles authentication business logic
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.AccessTokenRepository
	mailer    Mailer
	cfg       *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.AccessTokenRepository,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		cfg:       cfg,
	}
}

// RegisterInput represents registration input. Username and password are
// system-generated, not caller-supplied.
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	NIC       string `json:"nic" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Register registers a new user with a generated username and password
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Reject duplicate identity by email or NIC
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.userRepo.ExistsByNIC(ctx, input.NIC)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 2. Enforce role quotas
	role := domain.Role(input.Role)
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if err := s.checkRoleQuota(ctx, role); err != nil {
		return nil, err
	}

	// 3. Generate a unique role-prefixed username
	username, err := s.generateUniqueUsername(ctx, role)
	if err != nil {
		return nil, err
	}

	// 4. Generate and hash the initial password
	plainPassword, err := password.Generate()
	if err != nil {
		return nil, err
	}
	hashedPassword, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	// 5. Create user
	user := &models.User{
		Username:  username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Phone:     input.Phone,
		NIC:       input.NIC,
		Role:      string(role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 6. Issue tokens and store the access token in the ledger
	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, &models.AccessToken{
		Token:     accessToken,
		TokenType: models.TokenTypeBearer,
		UserID:    user.ID,
	}); err != nil {
		return nil, err
	}

	// 7. Send the generated credentials. Delivery is best-effort: a mail
	// failure does not roll back the registration.
	if err := s.mailer.SendLoginDetails(input.Email, username, plainPassword); err != nil {
		log.Printf("⚠️ Failed to send login details to %s: %v", input.Email, err)
	}

	log.Printf("✅ User registered: %s (role: %s)", username, role)

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         string(role),
		Message:      "User Registered Successfully and Email Sent",
	}, nil
}

// Login authenticates a user and rotates their ledger entry
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by username
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	// 2. Verify password before any token work
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Issue tokens
	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 4. Revoke old tokens and store the new one
	if err := s.tokenRepo.Rotate(ctx, user.ID, accessToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
		Message:      "User has logged in successfully",
	}, nil
}

// Refresh issues a fresh access token from the refresh token carried in
// the Authorization header. A missing or malformed header and any
// validation failure are silent no-ops: the caller gets (nil, nil) and
// the ledger is untouched.
func (s *AuthService) Refresh(ctx context.Context, authHeader string) (*AuthResponse, error) {
	refreshToken, ok := bearerToken(authHeader)
	if !ok {
		return nil, nil
	}

	// Subject extraction does not pre-check expiry; MatchesUser below does.
	username, err := jwt.ExtractUsername(refreshToken, s.cfg.JWT.Secret)
	if err != nil {
		return nil, nil
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil
	}

	if !jwt.MatchesUser(refreshToken, user.Username, s.cfg.JWT.Secret) {
		return nil, nil
	}

	newAccessToken, err := jwt.Generate(user.Username,
		map[string]interface{}{"role": user.Role},
		s.cfg.JWT.Secret, s.accessTTL())
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Rotate(ctx, user.ID, newAccessToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)

	return &AuthResponse{
		AccessToken:  newAccessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout flags the presented token as revoked and expired. A missing
// header or an unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil
	}

	row, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	row.Revoked = true
	row.Expired = true
	if err := s.tokenRepo.Update(ctx, row); err != nil {
		return err
	}

	log.Printf("✅ User logged out (user ID: %d)", row.UserID)
	return nil
}

// GetUserByUsername gets a user by username
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// checkRoleQuota rejects registration when the role cap is reached:
// one admin, two managers.
func (s *AuthService) checkRoleQuota(ctx context.Context, role domain.Role) error {
	var limit int64
	switch role {
	case domain.RoleAdmin:
		limit = domain.MaxAdmins
	case domain.RoleManager:
		limit = domain.MaxManagers
	default:
		return nil
	}

	count, err := s.userRepo.CountByRole(ctx, string(role))
	if err != nil {
		return err
	}
	if count >= limit {
		return domain.ErrRoleQuotaExceeded
	}
	return nil
}

// generateUniqueUsername retries a randomized role-prefixed candidate
// until the store reports no collision, bounded by maxUsernameAttempts.
func (s *AuthService) generateUniqueUsername(ctx context.Context, role domain.Role) (string, error) {
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		var candidate string
		switch role {
		case domain.RoleUser:
			n, err := randomInt(100000)
			if err != nil {
				return "", err
			}
			candidate = fmt.Sprintf("USR%05d", n)
		case domain.RoleAdmin:
			n, err := randomInt(100)
			if err != nil {
				return "", err
			}
			candidate = fmt.Sprintf("ADMIN%02d", n)
		case domain.RoleManager:
			n, err := randomInt(10000)
			if err != nil {
				return "", err
			}
			candidate = fmt.Sprintf("MGT%04d", n)
		default:
			return "", domain.ErrInvalidRole
		}

		exists, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", domain.ErrUsernameSpaceExhausted
}

// generateTokens issues the access/refresh pair for a user
func (s *AuthService) generateTokens(user *models.User) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.Generate(user.Username,
		map[string]interface{}{"role": user.Role},
		s.cfg.JWT.Secret, s.accessTTL())
	if err != nil {
		return "", "", err
	}

	refreshToken, err = jwt.Generate(user.Username,
		map[string]interface{}{"jti": uuid.New().String()},
		s.cfg.JWT.Secret, s.refreshTTL())
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) accessTTL() time.Duration {
	return time.Duration(s.cfg.JWT.AccessTokenMins) * time.Minute
}

func (s *AuthService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.JWT.RefreshTokenDays) * 24 * time.Hour
}

// bearerToken extracts the token from an Authorization header value
func bearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// randomInt returns a uniform random int in [0, max) from crypto/rand
func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
