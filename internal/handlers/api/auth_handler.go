package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/w0nsdoof/diplomatch/internal/audit"
	"github.com/w0nsdoof/diplomatch/internal/auth"
	"github.com/w0nsdoof/diplomatch/internal/mail"
	"github.com/w0nsdoof/diplomatch/internal/middlewares"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/params"
)

type AuthHandler struct {
	loginGuard   LoginGuard
	tokenService TokenService
	userService  UserService
	mailSender   mail.MailSender
	frontendURL  string
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	User   userInfoResponse `json:"user"`
	Tokens auth.TokenPair   `json:"tokens"`
}

func (h *AuthHandler) PostRegister(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	if err := validateEmail(req.Email); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, err.Error()))
	}
	if err := validatePassword(req.Password); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, err.Error()))
	}
	if req.Password != req.PasswordConfirm {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Passwords do not match."))
	}

	user, err := h.userService.RegisterUser(ctx.Context(), users.RegisterUserOptions{
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, users.ErrEmailRegistered) {
		return ctx.Status(fiber.StatusConflict).JSON(
			NewErrorResponse(fiber.StatusConflict, MsgEmailRegistered))
	}
	if err != nil {
		return err
	}
	if err := mail.SendWelcome(h.mailSender, user.Email, "DiploMatch"); err != nil {
		slog.Error("Could not send welcome mail", "email", user.Email, "error", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(newUserInfoResponse(user)))
}

func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	user, err := h.loginGuard.Authenticate(ctx.Context(), req.Email, req.Password, ctx.IP())
	if err != nil {
		return h.renderLoginFailure(ctx, req.Email, err)
	}

	if auditErr := audit.RecordLogin(ctx.Context(), audit.LoginRecord{
		UserID:    user.ID,
		Email:     user.Email,
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		Success:   true,
	}); auditErr != nil {
		slog.Error("Could not record login audit event", "email", user.Email, "error", auditErr)
	}

	tokens, err := h.tokenService.IssuePair(user)
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(loginResponse{
		User:   newUserInfoResponse(user),
		Tokens: *tokens,
	}))
}

func (h *AuthHandler) renderLoginFailure(ctx *fiber.Ctx, email string, err error) error {
	record := audit.BlockRecord{
		Email:     email,
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		Reason:    err.Error(),
	}
	var blockedErr *auth.AccountBlockedError
	var wrongPassErr *auth.WrongPasswordError
	switch {
	case errors.As(err, &blockedErr):
		if auditErr := audit.RecordAccountBlocked(ctx.Context(), record); auditErr != nil {
			slog.Error("Could not record audit event", "email", email, "error", auditErr)
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, fmt.Sprintf(MsgAccountBlocked, blockedErr.RemainingMinutes())))
	case errors.As(err, &wrongPassErr):
		if auditErr := audit.RecordLogin(ctx.Context(), audit.LoginRecord{
			Email: email, IP: record.IP, UserAgent: record.UserAgent, Reason: record.Reason,
		}); auditErr != nil {
			slog.Error("Could not record audit event", "email", email, "error", auditErr)
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, fmt.Sprintf(MsgWrongPassword, wrongPassErr.AttemptsLeft)))
	case errors.Is(err, auth.ErrIPBlocked):
		if auditErr := audit.RecordIPBlocked(ctx.Context(), record); auditErr != nil {
			slog.Error("Could not record audit event", "email", email, "error", auditErr)
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, MsgTooManyFailedLogin))
	case errors.Is(err, auth.ErrAttemptDebounced):
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, MsgAttemptTooSoon))
	case errors.Is(err, auth.ErrInvalidCredentials):
		if auditErr := audit.RecordLogin(ctx.Context(), audit.LoginRecord{
			Email: email, IP: record.IP, UserAgent: record.UserAgent, Reason: record.Reason,
		}); auditErr != nil {
			slog.Error("Could not record audit event", "email", email, "error", auditErr)
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, MsgInvalidCredentials))
	default:
		return err
	}
}

func (h *AuthHandler) PostRefresh(ctx *fiber.Ctx) error {
	var req refreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	claims, err := h.tokenService.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}
	// re-read the account so a fresh pair carries current role and flags
	user, err := h.userService.GetUserByID(ctx.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}
	if err != nil {
		return err
	}
	if user.Disabled {
		return fiber.NewError(fiber.StatusUnauthorized, "Account is disabled")
	}
	tokens, err := h.tokenService.IssuePair(user)
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(tokens))
}

func (h *AuthHandler) GetMe(ctx *fiber.Ctx) error {
	user, err := h.userService.GetUserByID(ctx.Context(), middlewares.AuthUserID(ctx))
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(newUserInfoResponse(user)))
}

// PostCompleteProfile marks the caller's profile as filled in. Tokens issued
// afterwards carry the updated flag.
func (h *AuthHandler) PostCompleteProfile(ctx *fiber.Ctx) error {
	userID := middlewares.AuthUserID(ctx)
	if err := h.userService.SetProfileCompleted(ctx.Context(), userID, true); err != nil {
		return err
	}
	user, err := h.userService.GetUserByID(ctx.Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(newUserInfoResponse(user)))
}

// PostForgotPassword always answers 200 so the endpoint cannot be used to
// probe which emails are registered.
func (h *AuthHandler) PostForgotPassword(ctx *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	token, err := h.userService.RequestPasswordReset(ctx.Context(), req.Email)
	if err == nil {
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", h.frontendURL, token)
		expireMinutes := int(params.ResetTokenExpiration.Minutes())
		if err := mail.SendPasswordReset(h.mailSender, req.Email, resetURL, expireMinutes); err != nil {
			slog.Error("Could not send password reset mail", "email", req.Email, "error", err)
		}
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return err
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"message": MsgPasswordResetSent}))
}

func (h *AuthHandler) PutResetPassword(ctx *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, err.Error()))
	}
	err := h.userService.ResetPassword(ctx.Context(), ctx.Params("token"), req.NewPassword)
	if errors.Is(err, users.ErrInvalidResetToken) {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidResetToken))
	}
	if err != nil {
		return err
	}
	if auditErr := audit.RecordPasswordReset(ctx.Context(), audit.BlockRecord{
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	}); auditErr != nil {
		slog.Error("Could not record audit event", "error", auditErr)
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"message": MsgPasswordResetDone}))
}

func NewAuthHandler(loginGuard LoginGuard, tokenService TokenService, userService UserService, mailSender mail.MailSender, frontendURL string) *AuthHandler {
	return &AuthHandler{
		loginGuard:   loginGuard,
		tokenService: tokenService,
		userService:  userService,
		mailSender:   mailSender,
		frontendURL:  frontendURL,
	}
}
