package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/vault"
	"github.com/ukaji3/exselect-go/pkg/exselect/widget"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiError(c echo.Context, status int, code, message string) error {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return c.JSON(status, resp)
}

// requestError is a client mistake detected inside a widget call.
type requestError struct {
	code string
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// widgetError maps library errors to user-visible API errors.
func widgetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, exselect.ErrMalformedInput):
		return apiError(c, http.StatusUnprocessableEntity, "malformed_input", "The spreadsheet needs a header row and at least one data row.")
	case errors.Is(err, exselect.ErrInvalidFormat):
		return apiError(c, http.StatusUnprocessableEntity, "invalid_format", "The file could not be read as a spreadsheet.")
	case errors.Is(err, exselect.ErrTooLarge):
		return apiError(c, http.StatusRequestEntityTooLarge, "too_large", "The spreadsheet is too large.")
	case errors.Is(err, exselect.ErrNothingSelected):
		return apiError(c, http.StatusConflict, "nothing_selected", "Select the rows to export first.")
	case errors.Is(err, exselect.ErrNoValidRows):
		return apiError(c, http.StatusConflict, "no_valid_rows", "None of the selected rows exist anymore.")
	case errors.Is(err, exselect.ErrNoDataset):
		return apiError(c, http.StatusConflict, "no_dataset", "Upload a spreadsheet first.")
	case errors.Is(err, widget.ErrRowNotVisible):
		return apiError(c, http.StatusConflict, "row_not_visible", "That row is not on the current page.")
	case errors.Is(err, widget.ErrUploadSuperseded):
		return apiError(c, http.StatusConflict, "upload_superseded", "A newer upload replaced this one.")
	case errors.Is(err, widget.ErrColumnOutOfRange):
		return apiError(c, http.StatusBadRequest, "bad_column", "That column does not exist.")
	case errors.Is(err, widget.ErrNothingToUndo):
		return apiError(c, http.StatusConflict, "nothing_to_undo", "There is no edit to undo.")
	case errors.Is(err, vault.ErrNotFound):
		return apiError(c, http.StatusNotFound, "not_saved", "No saved table was found.")
	case errors.Is(err, vault.ErrNoEdits):
		return apiError(c, http.StatusConflict, "no_edits", "No cells were modified.")
	case errors.Is(err, vault.ErrCorruptCell):
		return apiError(c, http.StatusUnprocessableEntity, "decrypt_failed", "The saved table could not be decrypted.")
	case errors.Is(err, vault.ErrCellOutOfRange):
		return apiError(c, http.StatusConflict, "stale_edit", "An edited cell is outside the saved table.")
	case errors.Is(err, vault.ErrRecordMismatch):
		return apiError(c, http.StatusConflict, "record_mismatch", "Save the table before updating it.")
	case errors.Is(err, vault.ErrUnknownMode):
		return apiError(c, http.StatusBadRequest, "bad_mode", "mode must be plain or encrypted.")
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return apiError(c, http.StatusBadRequest, reqErr.code, reqErr.Error())
	}
	var decodeErr *exselect.DecodeError
	if errors.As(err, &decodeErr) {
		return apiError(c, http.StatusUnprocessableEntity, "decode_failed", "The spreadsheet could not be decoded.")
	}
	return err
}

// handleError renders errors that escaped the handlers.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", c.Request().URL.Path).Error("request error")
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(status)
	} else if strings.HasPrefix(c.Path(), "/api") || strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		respErr = apiError(c, status, strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"), message)
	} else {
		respErr = c.String(status, message)
	}
	if respErr != nil {
		s.logger.WithError(respErr).Warn("failed to write error response")
	}
}
