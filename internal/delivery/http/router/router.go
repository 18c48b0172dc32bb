// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	CaseHandler    *handler.CaseHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	caseHandler    *handler.CaseHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		caseHandler:    params.CaseHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes; no session exists until the verification code round-trip
	// completes.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/verify", r.authHandler.VerifyCode)
		authGroup.POST("/resend", r.authHandler.ResendCode)
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
	}

	// Manufacturer reply webhook. Matched by task number, no user session.
	e.POST("/webhooks/manufacturer/reply", r.caseHandler.ManufacturerReply)

	// Catalog for the case submit form.
	e.GET("/manufacturers", r.caseHandler.ListManufacturers, r.authMiddleware.Authenticate)

	// Case routes that require a live session
	caseGroup := e.Group("/cases")
	caseGroup.Use(r.authMiddleware.Authenticate)
	{
		caseGroup.POST("", r.caseHandler.Submit)
		caseGroup.GET("", r.caseHandler.ListOwn)
		caseGroup.GET("/:id", r.caseHandler.Get)
		caseGroup.POST("/:id/forward", r.caseHandler.Forward)
	}

	// Admin routes: authenticated session first, admin rights second.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.GET("/approvals", r.adminHandler.ListPendingApprovals)
		adminGroup.POST("/cases/:id/approve", r.adminHandler.Approve)
		adminGroup.POST("/cases/:id/close", r.adminHandler.Close)
	}
}
