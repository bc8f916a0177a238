package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rjmoggach/litigation-support-sub001/internal/apiclient"
	"github.com/rjmoggach/litigation-support-sub001/internal/config"
	"github.com/rjmoggach/litigation-support-sub001/internal/dedupe"
	"github.com/rjmoggach/litigation-support-sub001/internal/session"
	"github.com/rjmoggach/litigation-support-sub001/web"
)

const (
	// stateSessionName is the short-lived gorilla cookie that carries OAuth
	// state nonces and flash messages, separate from the JWT session cookie.
	stateSessionName   = "portal_state"
	stateSessionMaxAge = 600

	// galleriesDedupeTTL is the window in which identical galleries fetches
	// share one backend call.
	galleriesDedupeTTL = 1 * time.Second
)

type Server struct {
	echo       *echo.Echo
	config     *config.Config
	api        *apiclient.Client
	codec      *session.Codec
	refresher  *session.Refresher
	stateStore *sessions.CookieStore
	galleries  *dedupe.Cache
	clock      clockwork.Clock
	templates  *template.Template
	startTime  time.Time
}

func NewServer(cfg *config.Config, api *apiclient.Client, clock clockwork.Clock) (*Server, error) {
	templates, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	secure := cfg.AppEnv == "production"

	stateStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	stateStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   stateSessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:       e,
		config:     cfg,
		api:        api,
		codec:      session.NewCodec(cfg.SessionSecret, secure, clock),
		refresher:  session.NewRefresher(api, clock),
		stateStore: stateStore,
		galleries:  dedupe.New(galleriesDedupeTTL, clock),
		clock:      clock,
		templates:  templates,
		startTime:  clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
