package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"tarvee/internal/auth"
	"tarvee/internal/http/middleware"
	"tarvee/internal/model"
	"tarvee/internal/validation"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	User      model.Identity `json:"user"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Message   string         `json:"message"`
}

// sessionCookies writes the HTTP-only session cookie.
type sessionCookies struct {
	secure bool
}

func (s sessionCookies) set(c *fiber.Ctx, sess *auth.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s sessionCookies) clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SignUp godoc
// @Summary Create an account and sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "email and password (at least 6 characters)"
// @Success 201 {object} sessionResponse
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/auth/signup [post]
func SignUp(svc auth.Service, secureCookie bool) fiber.Handler {
	cookies := sessionCookies{secure: secureCookie}
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
		}

		sess, err := svc.SignUp(c.UserContext(), req.Email, req.Password)
		if err != nil {
			var fields validation.FieldErrors
			switch {
			case errors.As(err, &fields):
				return writeValidation(c, titleSignUpFailed, fields)
			case errors.Is(err, auth.ErrEmailTaken):
				return writeNotice(c, fiber.StatusConflict, "EMAIL_TAKEN", titleSignUpFailed,
					"The email address is already in use by another account.")
			default:
				return writeNotice(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", titleSignUpFailed,
					"Something went wrong. Please try again.")
			}
		}

		cookies.set(c, sess)
		return c.Status(fiber.StatusCreated).JSON(sessionResponse{
			User:      sess.User,
			ExpiresAt: sess.ExpiresAt,
			Message:   "Account created successfully!",
		})
	}
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/auth/login [post]
func SignIn(svc auth.Service, secureCookie bool) fiber.Handler {
	cookies := sessionCookies{secure: secureCookie}
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
		}

		sess, err := svc.SignIn(c.UserContext(), req.Email, req.Password)
		if err != nil {
			var fields validation.FieldErrors
			switch {
			case errors.As(err, &fields):
				return writeValidation(c, titleLoginFailed, fields)
			case errors.Is(err, auth.ErrInvalidCredentials):
				return writeNotice(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", titleLoginFailed,
					"Invalid email or password.")
			default:
				return writeNotice(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", titleLoginFailed,
					"Something went wrong. Please try again.")
			}
		}

		cookies.set(c, sess)
		return c.JSON(sessionResponse{
			User:      sess.User,
			ExpiresAt: sess.ExpiresAt,
			Message:   "Login successful!",
		})
	}
}

// SignOut godoc
// @Summary Sign out and revoke the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/auth/logout [post]
func SignOut(svc auth.Service, secureCookie bool, log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}
	cookies := sessionCookies{secure: secureCookie}
	return func(c *fiber.Ctx) error {
		cookies.clear(c)
		if err := svc.SignOut(c.UserContext(), middleware.SessionToken(c)); err != nil {
			log.ErrorContext(c.UserContext(), "sign_out_failed",
				slog.String("request_id", middleware.RequestIDFrom(c)),
				slog.String("error", err.Error()),
			)
			return writeNotice(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", titleLogoutFailed,
				"Could not sign out. Please try again.")
		}
		return c.JSON(fiber.Map{"message": "Logged out successfully."})
	}
}

// CurrentUser godoc
// @Summary The signed-in identity, or null
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/me [get]
func CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, ok := middleware.CurrentUser(c); ok {
			return c.JSON(fiber.Map{"user": user})
		}
		return c.JSON(fiber.Map{"user": nil})
	}
}
