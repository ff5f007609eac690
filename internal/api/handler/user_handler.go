package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

// AvatarStager writes an uploaded file to temporary storage.
type AvatarStager interface {
	Stage(fh *multipart.FileHeader) (ports.AvatarUpload, error)
}

// UserHandler serves the /api/users endpoints. Errors are returned to echo
// and rendered by the central HTTP error handler.
type UserHandler struct {
	accounts ports.AccountService
	profiles ports.ProfileService
	stager   AvatarStager
}

func NewUserHandler(accounts ports.AccountService, profiles ports.ProfileService, stager AvatarStager) *UserHandler {
	return &UserHandler{accounts: accounts, profiles: profiles, stager: stager}
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	return c.Validate(req)
}

// Signup registers a new, unverified account and mails a verification link.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {string}  string         "created email"
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Signup(c.Request().Context(), ports.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Subscription: domain.Subscription(req.Subscription),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user.Email)
}

// Verify redeems the verification token from an emailed link.
//
// @Summary      Verify an email address
// @Tags         users
// @Produce      json
// @Param        verificationToken  path      string  true  "Verification token"
// @Success      200                {object}  messageResponse
// @Failure      404                {object}  errorResponse
// @Router       /verify/{verificationToken} [get]
func (h *UserHandler) Verify(c echo.Context) error {
	if err := h.accounts.VerifyEmail(c.Request().Context(), c.Param("verificationToken")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Verification successful"})
}

// ResendVerification mails the verification link again.
//
// @Summary      Resend the verification email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      resendVerificationRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /verify [post]
func (h *UserHandler) ResendVerification(c echo.Context) error {
	var req resendVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Verification email sent"})
}

// Login authenticates a verified user and returns a bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {string}  string        "bearer token"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, token)
}

// Logout revokes the caller's bearer token.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /logout [get]
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Current returns the authenticated user's profile.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  currentUserResponse
// @Failure      401  {object}  errorResponse
// @Router       /current [get]
func (h *UserHandler) Current(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, currentUserResponse{
		Email:        user.Email,
		Phone:        user.Phone,
		Subscription: string(user.Subscription),
	})
}

// UpdateSubscription changes the caller's subscription tier.
//
// @Summary      Update subscription
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSubscriptionRequest  true  "New tier"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /subscription [patch]
func (h *UserHandler) UpdateSubscription(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.profiles.UpdateSubscription(c.Request().Context(), user.ID, domain.Subscription(req.Subscription))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateAvatar replaces the caller's avatar with an uploaded image.
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file"
// @Success      200     {object}  avatarResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return domain.NewValidationError("avatar file is required")
	}

	upload, err := h.stager.Stage(fh)
	if err != nil {
		return err
	}

	url, err := h.profiles.UpdateAvatar(c.Request().Context(), user.ID, upload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avatarResponse{AvatarURL: url})
}
