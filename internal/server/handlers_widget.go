package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
	"github.com/ukaji3/exselect-go/pkg/exselect/export"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
	"github.com/ukaji3/exselect-go/pkg/exselect/widget"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type viewRequest struct {
	Page        *int    `json:"page"`
	Length      *int    `json:"length"`
	OrderColumn *int    `json:"order_column"`
	OrderDir    string  `json:"order_dir"`
	Search      *string `json:"search"`
}

type checkRequest struct {
	Checked bool `json:"checked"`
}

type editRequest struct {
	Index  *int   `json:"index"`
	Column *int   `json:"column"`
	Value  string `json:"value"`
}

// session returns the widget mounted for the request's session.
func (s *Server) session(c echo.Context) *session {
	claims := claimsFrom(c)
	return s.sessions.get(claims.ID, claims.Email, claims.ExpiresAt.Time, s.now())
}

// withWidget runs fn under the session lock and responds with a snapshot.
func (s *Server) withWidget(c echo.Context, fn func(*widget.Controller) error) error {
	sess := s.session(c)
	sess.mu.Lock()
	err := fn(sess.ctrl)
	snap := sess.ctrl.Snapshot()
	sess.mu.Unlock()

	if err != nil {
		return widgetError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) tablePage(c echo.Context) error {
	claims := claimsFrom(c)
	return c.Render(http.StatusOK, "table.html", map[string]interface{}{
		"Email":       claims.Email,
		"PageLengths": pageLengthOptions(),
	})
}

func (s *Server) upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apiError(c, http.StatusBadRequest, "missing_file", "Choose a spreadsheet to upload.")
	}
	if file.Size > s.opts.EffectiveMaxBytes() {
		return apiError(c, http.StatusRequestEntityTooLarge, "too_large", "The spreadsheet is too large.")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	sess := s.session(c)
	sess.mu.Lock()
	ticket := sess.ctrl.BeginUpload()
	sess.mu.Unlock()

	ds, err := codec.Decode(src, codec.DecodeOptions{
		Name:      file.Filename,
		SheetName: s.opts.SheetName,
		MaxBytes:  s.opts.EffectiveMaxBytes(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("file", file.Filename).Warn("upload rejected")
		return widgetError(c, err)
	}

	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.CompleteUpload(ticket, ds)
	})
}

func (s *Server) getView(c echo.Context) error {
	return s.withWidget(c, func(*widget.Controller) error { return nil })
}

func (s *Server) postView(c echo.Context) error {
	var req viewRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Malformed view request.")
	}

	dir := models.Asc
	switch req.OrderDir {
	case "", string(models.Asc):
	case string(models.Desc):
		dir = models.Desc
	default:
		return apiError(c, http.StatusBadRequest, "bad_request", "order_dir must be asc or desc.")
	}

	return s.withWidget(c, func(ctrl *widget.Controller) error {
		ds := ctrl.Dataset()
		if ds == nil {
			return exselect.ErrNoDataset
		}
		// Reject before mutating so a failed request leaves the view as it was.
		if req.OrderColumn != nil && (*req.OrderColumn < 0 || *req.OrderColumn >= len(ds.Header)) {
			return &requestError{
				code: "bad_order",
				err:  fmt.Errorf("order column %d out of range [0,%d)", *req.OrderColumn, len(ds.Header)),
			}
		}

		if req.Search != nil {
			if err := ctrl.Search(*req.Search); err != nil {
				return err
			}
		}
		if req.OrderColumn != nil {
			if err := ctrl.Order(*req.OrderColumn, dir); err != nil {
				return err
			}
		}
		if req.Length != nil {
			if err := ctrl.Length(*req.Length); err != nil {
				return err
			}
		}
		if req.Page != nil {
			return ctrl.Page(*req.Page)
		}
		return nil
	})
}

func (s *Server) toggleRow(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return apiError(c, http.StatusBadRequest, "bad_index", "Row index must be a non-negative integer.")
	}
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Malformed toggle request.")
	}
	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.ToggleRow(index, req.Checked)
	})
}

func (s *Server) selectAll(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Malformed select-all request.")
	}
	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.ToggleAll(req.Checked)
	})
}

func (s *Server) editCell(c echo.Context) error {
	var req editRequest
	if err := c.Bind(&req); err != nil || req.Index == nil || req.Column == nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "An edit needs index, column and value.")
	}
	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.EditCell(*req.Index, *req.Column, req.Value)
	})
}

func (s *Server) undo(c echo.Context) error {
	return s.withWidget(c, func(ctrl *widget.Controller) error {
		return ctrl.Undo()
	})
}

func (s *Server) export(c echo.Context) error {
	prefix := c.QueryParam("prefix")
	if prefix == "" {
		prefix = s.opts.EffectiveExportPrefix()
	}
	if !exselect.ValidExportPrefix(prefix) {
		return apiError(c, http.StatusBadRequest, "bad_prefix", "Prefix may contain letters, digits, '_' and '-'.")
	}

	var buf bytes.Buffer
	sess := s.session(c)
	sess.mu.Lock()
	res, err := sess.ctrl.Export(&buf, export.Options{})
	sess.mu.Unlock()
	if err != nil {
		return widgetError(c, err)
	}

	name := export.FileName(prefix, s.now())
	s.logger.WithFields(logrus.Fields{
		"file":    name,
		"rows":    len(res.Rows),
		"skipped": len(res.Skipped),
	}).Info("exported selection")

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

type pageLengthOption struct {
	Value int
	Label string
}

func pageLengthOptions() []pageLengthOption {
	opts := make([]pageLengthOption, 0, len(exselect.PageLengths))
	for _, n := range exselect.PageLengths {
		label := strconv.Itoa(n)
		if n < 0 {
			label = "All"
		}
		opts = append(opts, pageLengthOption{Value: n, Label: label})
	}
	return opts
}
