package domain

import "errors"

// Auth errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrRoleQuotaExceeded      = errors.New("role quota exceeded")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRole            = errors.New("unsupported role")
	ErrUsernameSpaceExhausted = errors.New("username space exhausted")
)

// Token errors
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Password reset errors
var (
	ErrInvalidResetCode = errors.New("invalid reset code")
	ErrResetCodeExpired = errors.New("reset code expired")
	ErrEmailMismatch    = errors.New("email does not match username")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWeakPassword     = errors.New("password does not meet the security requirements")
)
