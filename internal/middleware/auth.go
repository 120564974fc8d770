package middleware

import (
	"errors"
	"net/http"

	"authcore/internal/models"
	"authcore/internal/repositories"
	"authcore/internal/services"

	"github.com/gin-gonic/gin"
)

// SessionCookie — имя cookie с сессионным токеном.
const SessionCookie = "jwtToken"

// Ключи контекста, которые выставляет гейт.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

var (
	errTokenMissing = errors.New("JWT token not found")
	errEmptySubject = errors.New("invalid token payload")
	errUnknownUser  = errors.New("user not found")
	errTokenExpired = errors.New("token is expired")
)

// публичные эндпоинты, которые не требуют токена
func isPublicPath(path string) bool {
	switch path {
	case "/api/auth/sign-in",
		"/api/auth/sign-up",
		"/api/auth/forgot-password",
		"/api/auth/reset-password":
		return true
	}
	return false
}

// SessionAuth проверяет сессионный токен на каждом запросе и кладёт
// личность пользователя в контекст. Любой сбой — единый 401-конверт.
func SessionAuth(tokens services.TokenService, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight и публичные пути
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		user, err := authenticate(c, tokens, users)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized access: " + err.Error(),
			})
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxEmail, user.Email)
		c.Next()
	}
}

// authenticate — сама проверка, без побочных эффектов.
// Порядок шагов фиксирован: подпись → subject → пользователь → срок.
// Удалённый аккаунт видит "user not found" раньше, чем "token is expired".
func authenticate(c *gin.Context, tokens services.TokenService, users repositories.UserRepository) (*models.User, error) {
	tokenStr, err := c.Cookie(SessionCookie)
	if err != nil || tokenStr == "" {
		return nil, errTokenMissing
	}

	email, expired, err := tokens.Verify(tokenStr)
	if err != nil {
		return nil, services.ErrTokenInvalid
	}
	if email == "" {
		return nil, errEmptySubject
	}

	user, err := users.GetByEmail(email)
	if err != nil || user == nil {
		return nil, errUnknownUser
	}

	if expired {
		return nil, errTokenExpired
	}

	return user, nil
}
