package routes

import (
	"authcore/internal/handlers"
	"authcore/internal/middleware"
	"authcore/internal/repositories"
	"authcore/internal/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	tokens services.TokenService,
	users repositories.UserRepository,
) *gin.Engine {
	// гейт сам пропускает публичные пути
	r.Use(middleware.SessionAuth(tokens, users))

	auth := r.Group("/api/auth")
	{
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-in", authHandler.SignIn)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/sign-out", authHandler.SignOut)
		auth.GET("/profile", authHandler.Profile)
	}

	return r
}
