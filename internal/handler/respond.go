package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/media"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/service"
)

// Every endpoint answers with {"success": bool, "message"?: string, ...}.

func ok(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

func failure(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// fromError maps an error from the service, repository or media layer to
// a status and message.  Unknown errors are logged and reported as 500.
func fromError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return failure(c, http.StatusBadRequest, service.Message(err))
	case errors.Is(err, service.ErrUnauthorized):
		return failure(c, http.StatusUnauthorized, service.Message(err))
	case errors.Is(err, service.ErrNotFound):
		return failure(c, http.StatusNotFound, service.Message(err))
	case errors.Is(err, service.ErrCapacityExceeded), errors.Is(err, service.ErrConflict):
		return failure(c, http.StatusConflict, service.Message(err))
	case errors.Is(err, service.ErrGateway):
		return failure(c, http.StatusBadGateway, service.Message(err))
	case errors.Is(err, media.ErrUpload):
		log.Warn("upload failed", zap.Error(err))
		return failure(c, http.StatusBadGateway, "image upload failed")
	case errors.Is(err, repository.ErrNotFound):
		return failure(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrConflict):
		return failure(c, http.StatusConflict, "record changed, please retry")
	case errors.Is(err, repository.ErrEmailExists):
		return failure(c, http.StatusConflict, "User already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return failure(c, http.StatusGatewayTimeout, "request timed out")
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return failure(c, http.StatusInternalServerError, "internal server error")
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// formBool reads "true"/"1"/"on" style flags from forms.
func formBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b || strings.EqualFold(strings.TrimSpace(s), "on")
}

// formList decodes a JSON array, falling back to a comma separated list.
func formList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &out) == nil {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flexBool accepts true, "true" and similar in JSON bodies.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean %s", data)
	}
	*b = flexBool(v)
	return nil
}

// uploader stores multipart image fields through a media.Uploader.
type uploader struct {
	media media.Uploader
}

// image uploads the form file field and returns its URL, or "" when the
// field is absent.
func (u uploader) image(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", media.ErrUpload, err)
	}
	if u.media == nil {
		return "", fmt.Errorf("%w: no image host configured", media.ErrUpload)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", media.ErrUpload, err)
	}
	defer f.Close()
	return u.media.Upload(c.Request().Context(), media.File{Name: fh.Filename, Reader: f, Kind: media.KindImage})
}

const dbTimeout = 5 * time.Second

// gatewayTimeout bounds requests that call a payment provider.
const gatewayTimeout = 20 * time.Second
