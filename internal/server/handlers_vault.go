package server

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/export"
	"github.com/ukaji3/exselect-go/pkg/exselect/vault"
	"github.com/ukaji3/exselect-go/pkg/exselect/widget"
)

type saveRequest struct {
	Mode vault.Mode `json:"mode"`
}

type saveResponse struct {
	Success bool       `json:"success"`
	Mode    vault.Mode `json:"mode"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
}

type loadRequest struct {
	Decrypt bool `json:"decrypt"`
}

type updateResponse struct {
	Success     bool `json:"success"`
	RowsUpdated int  `json:"rows_updated"`
}

func (s *Server) requireVault(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.vault == nil {
			return apiError(c, http.StatusServiceUnavailable, "vault_disabled", "Saving tables is not configured.")
		}
		return next(c)
	}
}

func (s *Server) vaultSave(c echo.Context) error {
	req := saveRequest{Mode: vault.ModePlain}
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Malformed save request.")
	}

	sess := s.session(c)
	sess.mu.Lock()
	rec, err := s.vault.Save(c.Request().Context(), sess.email, sess.ctrl.Dataset(), req.Mode)
	if err == nil {
		sess.ctrl.MarkCommitted()
	}
	sess.mu.Unlock()
	if err != nil {
		return widgetError(c, err)
	}

	return c.JSON(http.StatusOK, saveResponse{
		Success: true,
		Mode:    rec.Mode,
		Rows:    len(rec.Rows),
		Columns: len(rec.Header),
	})
}

func (s *Server) vaultLoad(c echo.Context) error {
	var req loadRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Malformed load request.")
	}

	sess := s.session(c)
	sess.mu.Lock()
	ticket := sess.ctrl.BeginUpload()
	sess.mu.Unlock()

	ds, err := s.vault.Load(c.Request().Context(), sess.email, req.Decrypt)
	if err != nil {
		return widgetError(c, err)
	}
	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.CompleteUpload(ticket, ds)
	})
}

func (s *Server) vaultUpdate(c echo.Context) error {
	sess := s.session(c)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ds := sess.ctrl.Dataset()
	if ds == nil {
		return widgetError(c, exselect.ErrNoDataset)
	}
	n, err := s.vault.UpdateCells(c.Request().Context(), sess.email, ds.Fingerprint, sess.ctrl.PendingEdits())
	if err != nil {
		return widgetError(c, err)
	}
	sess.ctrl.MarkCommitted()
	return c.JSON(http.StatusOK, updateResponse{Success: true, RowsUpdated: n})
}

func (s *Server) vaultExport(c echo.Context) error {
	var decrypt bool
	switch vault.Mode(c.QueryParam("mode")) {
	case "", vault.ModePlain:
		decrypt = true
	case vault.ModeEncrypted:
	default:
		return apiError(c, http.StatusBadRequest, "bad_mode", "mode must be plain or encrypted.")
	}
	prefix := c.QueryParam("prefix")
	if prefix == "" {
		prefix = s.opts.EffectiveExportPrefix()
	}
	if !exselect.ValidExportPrefix(prefix) {
		return apiError(c, http.StatusBadRequest, "bad_prefix", "Prefix may contain letters, digits, '_' and '-'.")
	}

	sess := s.session(c)
	var buf bytes.Buffer
	n, err := s.vault.Export(c.Request().Context(), &buf, sess.email, decrypt, s.opts.SheetName)
	if err != nil {
		return widgetError(c, err)
	}

	name := export.FileName(prefix, s.now())
	s.logger.WithFields(logrus.Fields{"file": name, "rows": n, "decrypt": decrypt}).Info("exported saved table")

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (s *Server) vaultClear(c echo.Context) error {
	sess := s.session(c)
	if err := s.vault.Clear(c.Request().Context(), sess.email); err != nil {
		return widgetError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
