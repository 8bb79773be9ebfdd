package routes

import (
	"github.com/gin-gonic/gin"

	"accountsvc/internal/handlers"
	"accountsvc/internal/middleware"
	"accountsvc/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tokens *services.TokenService,
) *gin.Engine {
	api := r.Group("/api")

	// ---- public
	api.POST("/register", authHandler.Register)
	api.POST("/email/verify", authHandler.VerifyEmail)
	api.POST("/login", authHandler.Login)
	api.POST("/resend/otp", authHandler.ResendOTP)

	// forgot-password reuses the resend/verify flow before the change
	api.POST("/user/forget/pass", authHandler.ResendOTP)
	api.POST("/user/forget/pass/email/verify", authHandler.VerifyEmail)
	api.POST("/user/forget/pass/change", authHandler.ForgotPasswordChange)

	// ---- protected
	authed := api.Group("", middleware.AuthMiddleware(tokens))
	{
		authed.GET("/user/profile/details", userHandler.ProfileDetails)
		authed.POST("/edit/profile", userHandler.EditProfile)
		authed.POST("/change/password", userHandler.ChangePassword)
	}

	return r
}
