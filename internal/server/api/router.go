package api

import (
	"fmt"

	"clubhouse/internal/server/auth"
	"clubhouse/internal/server/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, sessions *auth.Manager, cfg *config.Config) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(RequestLogger())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", cfg.MaxUploadSize)))
	e.Use(sessions.Middleware())

	// Brute-force guard on credential endpoints
	credentialLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	e.GET("/health", handler.HandleHealth)

	// Home & message board
	e.GET("/", handler.HandleHome)
	e.POST("/new-message", handler.HandleNewMessage, auth.RequireLogin)
	e.POST("/become-a-member", handler.HandleBecomeMember, auth.RequireLogin)

	// Accounts
	e.GET("/sign-up", handler.HandleSignUpForm)
	e.POST("/sign-up", handler.HandleSignUp, credentialLimiter.Middleware())
	e.GET("/log-in", handler.HandleLogInForm)
	e.POST("/log-in", handler.HandleLogIn, credentialLimiter.Middleware())
	e.GET("/log-out", handler.HandleLogOut, auth.RequireLogin)

	// Uploads to the root
	e.GET("/upload", handler.HandleUploadForm, auth.RequireLogin)
	e.POST("/upload", handler.HandleUpload, auth.RequireLogin)

	// Folder tree; the POST wildcard dispatches on its trailing segment
	e.GET("/folder/*", handler.HandleFolder)
	e.POST("/folder/*", handler.HandleFolderAction)

	return e, nil
}
