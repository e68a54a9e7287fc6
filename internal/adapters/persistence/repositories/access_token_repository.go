package repositories

import (
	"context"

	"smartcart-auth/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// accessTokenRepository implements AccessTokenRepository interface
type accessTokenRepository struct {
	db *gorm.DB
}

// NewAccessTokenRepository creates a new access token repository
func NewAccessTokenRepository(db *gorm.DB) AccessTokenRepository {
	return &accessTokenRepository{db: db}
}

// Create inserts a new ledger row with both flags unset
func (r *accessTokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByToken gets a ledger row by its token string
func (r *accessTokenRepository) GetByToken(ctx context.Context, token string) (*models.AccessToken, error) {
	var row models.AccessToken
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists flag changes on a ledger row
func (r *accessTokenRepository) Update(ctx context.Context, token *models.AccessToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

// RevokeAllByUserID flags every live token for the user as revoked and
// expired. The live filter requires both flags unset, so calling this
// twice is a no-op the second time.
func (r *accessTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return revokeAllByUserID(r.db.WithContext(ctx), userID)
}

// Rotate revokes every live token for the user and inserts the new one
// inside a single transaction, so the new token can never be caught by
// the revoke that precedes it.
func (r *accessTokenRepository) Rotate(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revokeAllByUserID(tx, userID); err != nil {
			return err
		}
		return tx.Create(&models.AccessToken{
			Token:     token,
			TokenType: models.TokenTypeBearer,
			UserID:    userID,
		}).Error
	})
}

// IsLive reports whether the token's ledger row exists with both flags
// unset. A revoked-only or expired-only row is not live.
func (r *accessTokenRepository) IsLive(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("token = ?", token).
		Where("revoked = ?", false).
		Where("expired = ?", false).
		Count(&count).Error
	return count > 0, err
}

// DeleteByUserID removes every ledger row for a user. Only called when
// the user itself is deleted.
func (r *accessTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AccessToken{}).Error
}

func revokeAllByUserID(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.AccessToken{}).
		Where("user_id = ?", userID).
		Where("revoked = ?", false).
		Where("expired = ?", false).
		Updates(map[string]interface{}{
			"revoked": true,
			"expired": true,
		}).Error
}
