package repositories

import (
	"context"

	"smartcart-auth/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNIC(ctx context.Context, nic string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// AccessTokenRepository defines the token ledger interface. Tokens are
// flagged off, never deleted, except for the per-user bulk delete used
// when the owning user is removed.
type AccessTokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	GetByToken(ctx context.Context, token string) (*models.AccessToken, error)
	Update(ctx context.Context, token *models.AccessToken) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	// Rotate revokes every live token for the user and stores the new one
	// as a single unit of work.
	Rotate(ctx context.Context, userID uint, token string) error
	IsLive(ctx context.Context, token string) (bool, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

// ResetCodeRepository defines the reset code ledger interface
type ResetCodeRepository interface {
	Create(ctx context.Context, code *models.ResetCode) error
	GetByEmailAndCode(ctx context.Context, email, code string) (*models.ResetCode, error)
	ExpireAllByEmail(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context) error
}
