package handlers

import (
	"errors"
	"log"
	"net/http"

	"authcore/internal/middleware"
	"authcore/internal/models"
	"authcore/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp — регистрация нового пользователя.
// 409, если email уже занят; хеш пароля наружу не уходит.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(&req, err))
		return
	}

	user, err := h.auth.SignUp(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[auth][sign-up] failed for email=%q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	log.Printf("[auth][sign-up] created userID=%d email=%q", user.ID, user.Email)
	c.JSON(http.StatusCreated, user)
}

// SignIn — вход по email/паролю, ставит сессионную cookie на 24 часа.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(&req, err))
		return
	}

	user, token, err := h.auth.SignIn(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrIncorrectPassword):
			log.Printf("[auth][sign-in] password mismatch for email=%q", req.Email)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth][sign-in] failed for email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		}
		return
	}

	c.SetCookie(middleware.SessionCookie, token, int(services.TokenTTL.Seconds()), "/", "", true, true)
	log.Printf("[auth][sign-in] success userID=%d", user.ID)
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(&req, err))
		return
	}

	if err := h.auth.ForgotPassword(req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[auth][forgot-password] failed for email=%q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code successfully sent to the email"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(&req, err))
		return
	}

	if err := h.auth.ResetPassword(req.Email, req.VerificationCode, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth][reset-password] failed for email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	log.Printf("[auth][reset-password] password changed for email=%q", req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

// SignOut — только просит клиента забыть cookie. Серверной сессии нет,
// перехваченный токен остаётся валидным до истечения срока.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successfully"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	email := c.GetString(middleware.CtxEmail)

	user, err := h.auth.Profile(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[auth][profile] failed for email=%q: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
