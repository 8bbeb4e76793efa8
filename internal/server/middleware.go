package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/internal/auth"
)

const (
	sessionCookie = "exselect_session"
	claimsKey     = "claims"
)

var errSessionRevoked = errors.New("session logged out")

func requestLogger(logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			entry := logger.WithFields(logrus.Fields{
				"method":  req.Method,
				"path":    req.URL.Path,
				"status":  res.Status,
				"bytes":   res.Size,
				"latency": time.Since(start).String(),
			})
			if res.Status >= http.StatusInternalServerError {
				entry.Error("request")
			} else {
				entry.Debug("request")
			}
			return nil
		}
	}
}

// requireSession rejects requests without a valid session cookie. API
// routes get a 401 JSON body, pages are redirected to the login page.
func (s *Server) requireSession(api bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookie)
			var claims *auth.SessionClaims
			if err == nil {
				claims, err = s.issuer.Parse(cookie.Value)
			}
			if err == nil && s.sessions.isRevoked(claims.ID) {
				err = errSessionRevoked
			}
			if err != nil {
				if api {
					return apiError(c, http.StatusUnauthorized, "unauthorized", "Log in first.")
				}
				return c.Redirect(http.StatusSeeOther, "/")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func claimsFrom(c echo.Context) *auth.SessionClaims {
	claims, _ := c.Get(claimsKey).(*auth.SessionClaims)
	return claims
}
