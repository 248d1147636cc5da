// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"usersvc/internal/delivery/http/middleware"
	"usersvc/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler     *handler.UserHandler
	AuthHandler     *handler.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	AdminMiddleware *middleware.AdminMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler     *handler.UserHandler
	authHandler     *handler.AuthHandler
	authMiddleware  *middleware.AuthMiddleware
	adminMiddleware *middleware.AdminMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:     params.UserHandler,
		authHandler:     params.AuthHandler,
		authMiddleware:  params.AuthMiddleware,
		adminMiddleware: params.AdminMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	usersGroup := e.Group("/users")
	{
		usersGroup.GET("", r.userHandler.ListUsers)
		usersGroup.POST("", r.userHandler.CreateUser)
		usersGroup.POST("/batch", r.userHandler.CreateUsers)
		usersGroup.GET("/username/:username", r.userHandler.GetUserByUsername)
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.Match([]string{http.MethodPost, http.MethodPatch}, "/:id", r.userHandler.UpdateUser)
		usersGroup.DELETE("/:id", r.userHandler.DeleteUser)

		// Wipes the whole table; only reachable with the admin token.
		usersGroup.DELETE("", r.userHandler.DeleteAllUsers, r.adminMiddleware.RequireAdmin)
	}
}
