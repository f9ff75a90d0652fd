// Package router contains routing for the API delivery.
package router

import (
	"authgate/internal/delivery/api/middleware"
	"authgate/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	values := e.Group("/api/values")

	// Login is the only anonymous operation.
	values.POST("/login", r.authHandler.Login)

	secured := values.Group("", r.authMiddleware.Authenticate)
	{
		secured.POST("/addUser", r.authHandler.AddUser)
		secured.POST("/addPw", r.authHandler.AddPassword)
		secured.POST("/updatePw", r.authHandler.UpdatePassword)
		secured.POST("/resetPw/request", r.authHandler.RequestPasswordReset)
		secured.POST("/resetPw/confirm", r.authHandler.ResetPassword)
	}
}
