package handlers

import (
	"errors"
	"strings"

	"smartcart-auth/internal/core/domain"
	"smartcart-auth/internal/core/services"
	"smartcart-auth/internal/pkg/pagination"
	"smartcart-auth/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	NewPassword          string `json:"new_password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

// ForgetPasswordRequest represents forget password request body
type ForgetPasswordRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ResetPasswordRequest represents reset password request body
type ResetPasswordRequest struct {
	Email                string `json:"email"`
	ResetCode            string `json:"reset_code"`
	NewPassword          string `json:"new_password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

// ChangePassword handles password change for the authenticated user
// @Summary Change password
// @Description Change the caller's password after verifying the current one
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password change data"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/changePassword [patch]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	username, ok := c.Locals("username").(string)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ChangePasswordInput{
		CurrentPassword:      req.CurrentPassword,
		NewPassword:          req.NewPassword,
		ConfirmationPassword: req.ConfirmationPassword,
	}

	if err := h.userService.ChangePassword(c.Context(), username, input); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Wrong current password")
		case errors.Is(err, domain.ErrPasswordMismatch):
			return response.BadRequest(c, "Passwords do not match")
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "New password must be at least 8 characters long and include at least one uppercase letter, one number, and one special character")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Accepted(c, "Password changed successfully")
}

// ForgetPassword initiates password recovery
// @Summary Initiate password recovery
// @Description Send a reset code to the user's email if the username and email match
// @Tags Users
// @Accept json
// @Produce json
// @Param body body ForgetPasswordRequest true "Recovery request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/forgetPassword [patch]
func (h *UserHandler) ForgetPassword(c *fiber.Ctx) error {
	var req ForgetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Email == "" {
		return response.BadRequest(c, "Username and email are required")
	}

	err := h.userService.ForgotPassword(c.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "Invalid username or email")
		case errors.Is(err, domain.ErrEmailMismatch):
			return response.BadRequest(c, "The provided email does not match the username")
		default:
			return response.InternalServerError(c, "Failed to process recovery request")
		}
	}

	return response.Success(c, "Reset code sent to your email", nil)
}

// ResetPassword completes password recovery with a reset code
// @Summary Reset password with code
// @Description Set a new password using the emailed reset code
// @Tags Users
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/resetPassword [patch]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.ResetCode == "" || req.NewPassword == "" || req.ConfirmationPassword == "" {
		return response.BadRequest(c, "Email, code, new password, and confirmation password are required")
	}

	input := &services.ChangePasswordInput{
		NewPassword:          req.NewPassword,
		ConfirmationPassword: req.ConfirmationPassword,
	}

	err := h.userService.ResetPasswordWithCode(c.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.ResetCode), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidResetCode):
			return response.BadRequest(c, "Invalid or expired reset code")
		case errors.Is(err, domain.ErrResetCodeExpired):
			return response.BadRequest(c, "Reset code is expired")
		case errors.Is(err, domain.ErrPasswordMismatch):
			return response.BadRequest(c, "Passwords do not match")
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "New password must be at least 8 characters long and include at least one uppercase letter, one number, and one special character")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Accepted(c, "Password reset successfully")
}

// DeleteUser removes a user account (admin only)
// @Summary Delete user
// @Description Delete a user and every token they own
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{username} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return response.BadRequest(c, "Username is required")
	}

	if err := h.userService.DeleteUser(c.Context(), username); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User does not exist")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ListUsers lists user accounts (admin only)
// @Summary List users
// @Description List users with pagination
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}
