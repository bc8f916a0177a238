package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Root - redirect to dashboard
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(302, "/dashboard")
	})

	// Auth routes
	loginLimiter := newRateLimiter(s.config.LoginRateLimit, s.config.LoginRateBurst)
	s.echo.GET("/login", s.handleLoginPage)
	s.echo.POST("/login", s.handleLogin, loginLimiter)
	s.echo.GET("/login/oauth/:provider", s.handleOAuthStart)
	s.echo.GET("/auth/callback", s.handleOAuthCallback)
	s.echo.POST("/logout", s.handleLogout)

	// OAuth popup bridge: runs inside the popup, needs the session cookie
	// but no predicate gating (errors must render, not redirect)
	s.echo.GET("/oauth/bridge", s.handleBridge)

	// Authenticated portal (active account required by default)
	auth := s.gate(GateOptions{})
	s.echo.GET("/dashboard", s.handleDashboard, auth)

	s.echo.GET("/people", s.handlePeopleList, auth)
	s.echo.POST("/people", s.handlePersonCreate, auth)
	s.echo.POST("/people/:id", s.handlePersonUpdate, auth)
	s.echo.POST("/people/:id/delete", s.handlePersonDelete, auth)

	s.echo.GET("/companies", s.handleCompaniesList, auth)
	s.echo.POST("/companies", s.handleCompanyCreate, auth)
	s.echo.POST("/companies/:id", s.handleCompanyUpdate, auth)
	s.echo.POST("/companies/:id/delete", s.handleCompanyDelete, auth)

	s.echo.GET("/galleries", s.handleGalleriesList, auth)
	s.echo.POST("/galleries", s.handleGalleryCreate, auth)
	s.echo.GET("/galleries/:id", s.handleGalleryDetail, auth)
	s.echo.POST("/galleries/:id/delete", s.handleGalleryDelete, auth)
	s.echo.POST("/images/:id/delete", s.handleImageDelete, auth)

	s.echo.GET("/pages", s.handlePagesList, auth)
	s.echo.POST("/pages", s.handlePageCreate, auth)
	s.echo.POST("/pages/:id", s.handlePageUpdate, auth)
	s.echo.POST("/pages/:id/delete", s.handlePageDelete, auth)

	s.echo.GET("/accounts", s.handleAccountsList, auth)
	s.echo.GET("/accounts/connect/:provider", s.handleAccountConnect, auth)
	s.echo.POST("/accounts/:id/disconnect", s.handleAccountDisconnect, auth)

	// Admin surface: verified superusers only
	admin := s.gate(GateOptions{RequireVerified: true, RequireSuperuser: true})
	s.echo.GET("/admin/users", s.handleUsersList, admin)
	s.echo.POST("/admin/users/:id", s.handleUserUpdate, admin)
	s.echo.POST("/admin/users/:id/delete", s.handleUserDelete, admin)
}
