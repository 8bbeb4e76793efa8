package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/internal/auth"
)

type loginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

type signupPageData struct {
	MinScore int
	Error    string
}

func (s *Server) loginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{
		"AllowSignup": s.cfg.Auth.AllowSignup,
	})
}

func (s *Server) login(c echo.Context) error {
	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	remember := c.FormValue("remember-me") != ""

	if err := auth.ValidateEmail(email); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Message: "Invalid email format."})
	}
	if err := auth.ValidatePassword(password); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Message: "Password contains invalid characters."})
	}

	if err := s.users.Authenticate(email, password); err != nil {
		s.logger.WithField("email", email).Info("login rejected")
		return c.JSON(http.StatusUnauthorized, loginResponse{Message: "Invalid email or password."})
	}

	token, claims, err := s.issuer.Issue(email, remember)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Scheme() == "https",
	}
	if remember {
		cookie.Expires = claims.ExpiresAt.Time
	}
	c.SetCookie(cookie)

	s.logger.WithFields(logrus.Fields{"email": email, "session": claims.ID}).Info("login")
	return c.JSON(http.StatusOK, loginResponse{Success: true, Redirect: "/table"})
}

func (s *Server) signupPage(c echo.Context) error {
	if !s.cfg.Auth.AllowSignup {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.Render(http.StatusOK, "signup.html", signupPageData{MinScore: s.cfg.Auth.MinPasswordScore})
}

func (s *Server) signup(c echo.Context) error {
	if !s.cfg.Auth.AllowSignup {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirm-password")

	err := s.users.Register(email, password, confirm)
	if err == nil {
		s.logger.WithField("email", email).Info("registered user")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, auth.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrWeakPassword):
	default:
		return err
	}
	return c.Render(status, "signup.html", signupPageData{
		MinScore: s.cfg.Auth.MinPasswordScore,
		Error:    err.Error(),
	})
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		if claims, err := s.issuer.Parse(cookie.Value); err == nil {
			s.sessions.revoke(claims.ID, claims.ExpiresAt.Time)
			s.logger.WithFields(logrus.Fields{"email": claims.Email, "session": claims.ID}).Info("logout")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(http.StatusOK, loginResponse{Success: true, Redirect: "/"})
}
