// Package server serves the login page and the spreadsheet selection widget
// over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/internal/auth"
	"github.com/ukaji3/exselect-go/internal/config"
	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/vault"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	shutdownTimeout = 10 * time.Second
	// multipartOverhead is the slack allowed above the file size for form framing.
	multipartOverhead = 64 << 10
)

// Server wires authentication and per-session widgets into an echo instance.
type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	logger   logrus.FieldLogger
	users    *auth.UserStore
	issuer   *auth.Issuer
	sessions *registry
	opts     exselect.Options
	vault    *vault.Vault
	now      func() time.Time
}

type templates struct {
	t *template.Template
}

func (t *templates) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.t.ExecuteTemplate(w, name, data)
}

// New builds a server from cfg. Users are looked up in users.
func New(cfg *config.Config, users *auth.UserStore, logger logrus.FieldLogger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:   echo.New(),
		cfg:    cfg,
		logger: logger,
		users:  users,
		issuer: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.RememberTTL),
		opts:   cfg.WidgetOptions(),
		now:    time.Now,
	}
	s.sessions = newRegistry(s.opts, logger)
	if s.vault, err = newVault(cfg, logger); err != nil {
		return nil, err
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Renderer = &templates{t: tmpl}
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(requestLogger(logger))

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/", s.loginPage)
	e.POST("/login", s.login)
	e.GET("/signup", s.signupPage)
	e.POST("/signup", s.signup)
	e.POST("/logout", s.logout)

	e.GET("/table", s.tablePage, s.requireSession(false))

	api := e.Group("/api", s.requireSession(true))
	api.POST("/upload", s.upload, middleware.BodyLimit(strconv.FormatInt(s.opts.EffectiveMaxBytes()+multipartOverhead, 10)))
	api.GET("/view", s.getView)
	api.POST("/view", s.postView)
	api.POST("/rows/:index", s.toggleRow)
	api.POST("/select-all", s.selectAll)
	api.POST("/cells", s.editCell)
	api.POST("/undo", s.undo)
	api.GET("/export", s.export)

	v := api.Group("/vault", s.requireVault)
	v.POST("/save", s.vaultSave)
	v.POST("/load", s.vaultLoad)
	v.POST("/update", s.vaultUpdate)
	v.GET("/export", s.vaultExport)
	v.DELETE("", s.vaultClear)
}

// newVault returns nil when no vault password is configured.
func newVault(cfg *config.Config, logger logrus.FieldLogger) (*vault.Vault, error) {
	if cfg.Vault.Password == "" {
		return nil, nil
	}
	cipher, err := vault.NewCipher(vault.KeyParams{
		Password:   cfg.Vault.Password,
		Salt:       []byte(cfg.Vault.Salt),
		Iterations: cfg.Vault.Iterations,
		KeyLen:     cfg.Vault.KeyLen,
	})
	if err != nil {
		return nil, fmt.Errorf("vault cipher: %w", err)
	}

	var store vault.Store = vault.NewMemoryStore()
	if cfg.Vault.Dir != "" {
		if store, err = vault.NewFileStore(cfg.Vault.Dir); err != nil {
			return nil, fmt.Errorf("vault store: %w", err)
		}
	}
	return vault.New(store, cipher, cfg.Vault.Workers, logger.WithField("component", "vault")), nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on cfg.Server.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
