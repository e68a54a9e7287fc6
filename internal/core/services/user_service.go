package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"smartcart-auth/internal/adapters/persistence/models"
	"smartcart-auth/internal/adapters/persistence/repositories"
	"smartcart-auth/internal/core/domain"
	"smartcart-auth/internal/pkg/password"

	"gorm.io/gorm"
)

// resetCodeTTL is the wall-clock lifetime of a password reset code
const resetCodeTTL = 3 * time.Minute

// UserService handles password management and user administration
type UserService struct {
	userRepo      repositories.UserRepository
	resetCodeRepo repositories.ResetCodeRepository
	tokenRepo     repositories.AccessTokenRepository
	mailer        Mailer
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	resetCodeRepo repositories.ResetCodeRepository,
	tokenRepo repositories.AccessTokenRepository,
	mailer Mailer,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		resetCodeRepo: resetCodeRepo,
		tokenRepo:     tokenRepo,
		mailer:        mailer,
	}
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword      string `json:"current_password"`
	NewPassword          string `json:"new_password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

// ForgotPassword starts the out-of-band recovery flow: it expires every
// previous code for the email and issues a new 6-digit code valid for
// three minutes.
func (s *UserService) ForgotPassword(ctx context.Context, username, email string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	// Guards against spraying codes to arbitrary addresses
	if user.Email != email {
		return domain.ErrEmailMismatch
	}

	// Expire-then-insert keeps at most one usable code per email
	if err := s.resetCodeRepo.ExpireAllByEmail(ctx, email); err != nil {
		return err
	}

	n, err := randomInt(1000000)
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n)

	if err := s.resetCodeRepo.Create(ctx, &models.ResetCode{
		Email:          email,
		Code:           code,
		ExpirationTime: time.Now().Add(resetCodeTTL),
	}); err != nil {
		return err
	}

	// Best-effort delivery; the code stays valid even if the mail fails,
	// and the user can request a new one.
	if err := s.mailer.SendResetCode(email, code); err != nil {
		log.Printf("⚠️ Failed to send reset code to %s: %v", email, err)
	}

	log.Printf("✅ Reset code issued for %s", email)
	return nil
}

// ResetPasswordWithCode consumes a reset code and sets a new password.
// On success every code for the email is deleted.
func (s *UserService) ResetPasswordWithCode(ctx context.Context, email, code string, input *ChangePasswordInput) error {
	row, err := s.resetCodeRepo.GetByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidResetCode
		}
		return err
	}

	// The flag and the timestamp are independent kill switches
	if !row.IsUsable(time.Now()) {
		return domain.ErrResetCodeExpired
	}

	if err := validateNewPassword(input.NewPassword, input.ConfirmationPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.resetCodeRepo.DeleteByEmail(ctx, email); err != nil {
		return err
	}

	log.Printf("✅ Password reset completed for %s", user.Username)
	return nil
}

// ChangePassword changes the caller's own password after verifying the
// current one
func (s *UserService) ChangePassword(ctx context.Context, username string, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.CurrentPassword, user.Password) {
		return domain.ErrInvalidCredentials
	}

	if err := validateNewPassword(input.NewPassword, input.ConfirmationPassword); err != nil {
		return err
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password changed for %s", user.Username)
	return nil
}

// DeleteUser removes a user and every ledger row they own
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}
	if err := s.resetCodeRepo.DeleteByEmail(ctx, user.Email); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	log.Printf("✅ User deleted: %s", username)
	return nil
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, total, nil
}

// validateNewPassword applies the confirmation and strength rules shared
// by the reset and change flows
func validateNewPassword(newPassword, confirmation string) error {
	if newPassword != confirmation {
		return domain.ErrPasswordMismatch
	}
	if !password.IsStrong(newPassword) {
		return domain.ErrWeakPassword
	}
	return nil
}
