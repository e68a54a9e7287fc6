package repositories

import (
	"context"
	"time"

	"smartcart-auth/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// resetCodeRepository implements ResetCodeRepository interface
type resetCodeRepository struct {
	db *gorm.DB
}

// NewResetCodeRepository creates a new reset code repository
func NewResetCodeRepository(db *gorm.DB) ResetCodeRepository {
	return &resetCodeRepository{db: db}
}

// Create inserts a new reset code
func (r *resetCodeRepository) Create(ctx context.Context, code *models.ResetCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetByEmailAndCode gets a reset code row by email and code value
func (r *resetCodeRepository) GetByEmailAndCode(ctx context.Context, email, code string) (*models.ResetCode, error) {
	var row models.ResetCode
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ExpireAllByEmail flags every code for the email as expired. Called
// before inserting a new code so at most one usable code exists per
// email at any instant.
func (r *resetCodeRepository) ExpireAllByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.ResetCode{}).
		Where("email = ?", email).
		Where("expired = ?", false).
		Update("expired", true).Error
}

// DeleteByEmail removes every code for the email. Called after a
// successful password reset.
func (r *resetCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.ResetCode{}).Error
}

// DeleteExpired purges codes that are flagged expired or past their
// expiration time (cleanup job)
func (r *resetCodeRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expired = ?", true).
		Or("expiration_time < ?", time.Now()).
		Delete(&models.ResetCode{}).Error
}
