package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"smartcart-auth/internal/adapters/persistence/models"
	"smartcart-auth/internal/core/domain"
	"smartcart-auth/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc           *UserService
	userRepo      *memUserRepo
	resetCodeRepo *memResetCodeRepo
	tokenRepo     *memTokenRepo
	mailer        *fakeMailer
}

func newUserFixture() *userFixture {
	userRepo := newMemUserRepo()
	resetCodeRepo := newMemResetCodeRepo()
	tokenRepo := newMemTokenRepo()
	mailer := &fakeMailer{}
	return &userFixture{
		svc:           NewUserService(userRepo, resetCodeRepo, tokenRepo, mailer),
		userRepo:      userRepo,
		resetCodeRepo: resetCodeRepo,
		tokenRepo:     tokenRepo,
		mailer:        mailer,
	}
}

func (f *userFixture) seedUser(t *testing.T, username, email, plainPassword string) *models.User {
	t.Helper()
	hashed, err := password.Hash(plainPassword)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		NIC:      "991234567V",
		Role:     "USER",
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func TestForgotPasswordIssuesCode(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "USR00001", "kasun@example.com"))

	codes := f.resetCodeRepo.usableCodesFor("kasun@example.com")
	require.Len(t, codes, 1)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), codes[0])

	sent, ok := f.mailer.lastCode()
	require.True(t, ok)
	assert.Equal(t, "kasun@example.com", sent.Email)
	assert.Equal(t, codes[0], sent.Code)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	f := newUserFixture()

	err := f.svc.ForgotPassword(context.Background(), "USR99999", "kasun@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestForgotPasswordEmailMismatch(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	err := f.svc.ForgotPassword(context.Background(), "USR00001", "attacker@example.com")
	assert.ErrorIs(t, err, domain.ErrEmailMismatch)
	assert.Empty(t, f.resetCodeRepo.usableCodesFor("attacker@example.com"))
}

func TestForgotPasswordKeepsOneUsableCode(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "USR00001", "kasun@example.com"))
	require.NoError(t, f.svc.ForgotPassword(context.Background(), "USR00001", "kasun@example.com"))

	// The second request expires the first code; only the latest works
	codes := f.resetCodeRepo.usableCodesFor("kasun@example.com")
	require.Len(t, codes, 1)

	sent, ok := f.mailer.lastCode()
	require.True(t, ok)
	assert.Equal(t, sent.Code, codes[0])
}

func TestForgotPasswordMailFailureKeepsCode(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	f.mailer.failNext = true

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "USR00001", "kasun@example.com"))
	assert.Len(t, f.resetCodeRepo.usableCodesFor("kasun@example.com"), 1)
}

func TestResetPasswordWithCode(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "USR00001", "kasun@example.com"))
	sent, ok := f.mailer.lastCode()
	require.True(t, ok)

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", sent.Code, &ChangePasswordInput{
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	require.NoError(t, err)

	updated, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("NewSecret@456", updated.Password))
	assert.False(t, password.Verify("Secret@123", updated.Password))

	// A consumed code cannot be replayed
	err = f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", sent.Code, &ChangePasswordInput{
		NewPassword:          "Another@789",
		ConfirmationPassword: "Another@789",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResetCode)
}

func TestResetPasswordInvalidCode(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", "000000", &ChangePasswordInput{
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResetCode)
}

func TestResetPasswordExpiredFlag(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	f.resetCodeRepo.seed(&models.ResetCode{
		Email:          "kasun@example.com",
		Code:           "123456",
		ExpirationTime: time.Now().Add(resetCodeTTL),
		Expired:        true,
	})

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", "123456", &ChangePasswordInput{
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	assert.ErrorIs(t, err, domain.ErrResetCodeExpired)
}

// A code past its timestamp is dead even if the expired flag was never set
func TestResetPasswordExpiredByTimestamp(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	f.resetCodeRepo.seed(&models.ResetCode{
		Email:          "kasun@example.com",
		Code:           "123456",
		ExpirationTime: time.Now().Add(-time.Second),
	})

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", "123456", &ChangePasswordInput{
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	assert.ErrorIs(t, err, domain.ErrResetCodeExpired)
}

func TestResetPasswordConfirmationMismatch(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	f.resetCodeRepo.seed(&models.ResetCode{
		Email:          "kasun@example.com",
		Code:           "123456",
		ExpirationTime: time.Now().Add(resetCodeTTL),
	})

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", "123456", &ChangePasswordInput{
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "Different@456",
	})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
}

func TestResetPasswordWeakPassword(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	f.resetCodeRepo.seed(&models.ResetCode{
		Email:          "kasun@example.com",
		Code:           "123456",
		ExpirationTime: time.Now().Add(resetCodeTTL),
	})

	err := f.svc.ResetPasswordWithCode(context.Background(), "kasun@example.com", "123456", &ChangePasswordInput{
		NewPassword:          "weakpass",
		ConfirmationPassword: "weakpass",
	})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	err := f.svc.ChangePassword(context.Background(), "USR00001", &ChangePasswordInput{
		CurrentPassword:      "Secret@123",
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	require.NoError(t, err)

	updated, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("NewSecret@456", updated.Password))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")

	err := f.svc.ChangePassword(context.Background(), "USR00001", &ChangePasswordInput{
		CurrentPassword:      "Wrong@123",
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	f := newUserFixture()

	err := f.svc.ChangePassword(context.Background(), "USR99999", &ChangePasswordInput{
		CurrentPassword:      "Secret@123",
		NewPassword:          "NewSecret@456",
		ConfirmationPassword: "NewSecret@456",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t, "USR00001", "kasun@example.com", "Secret@123")
	require.NoError(t, f.tokenRepo.Create(context.Background(), &models.AccessToken{
		Token:     "token-a",
		TokenType: models.TokenTypeBearer,
		UserID:    user.ID,
	}))
	f.resetCodeRepo.seed(&models.ResetCode{
		Email:          "kasun@example.com",
		Code:           "123456",
		ExpirationTime: time.Now().Add(resetCodeTTL),
	})

	require.NoError(t, f.svc.DeleteUser(context.Background(), "USR00001"))

	_, err := f.userRepo.GetByUsername(context.Background(), "USR00001")
	assert.Error(t, err)
	assert.Zero(t, f.tokenRepo.rowCount())
	assert.Empty(t, f.resetCodeRepo.usableCodesFor("kasun@example.com"))
}

func TestDeleteUserUnknown(t *testing.T) {
	f := newUserFixture()

	err := f.svc.DeleteUser(context.Background(), "USR99999")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	f := newUserFixture()
	f.seedUser(t, "USR00001", "a@example.com", "Secret@123")
	f.seedUser(t, "USR00002", "b@example.com", "Secret@123")

	users, total, err := f.svc.ListUsers(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEmpty(t, u.Username)
	}
}
