package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/media"
	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/model"
)

type PublicationStore interface {
	Create(ctx context.Context, p *model.Publication) error
	GetByID(ctx context.Context, id string) (*model.Publication, error)
	List(ctx context.Context) ([]model.Publication, error)
	Update(ctx context.Context, p *model.Publication) error
	Delete(ctx context.Context, id string) error
}

type StoryStore interface {
	Create(ctx context.Context, s *model.Story) error
	GetByID(ctx context.Context, id string) (*model.Story, error)
	List(ctx context.Context) ([]model.Story, error)
	Update(ctx context.Context, s *model.Story) error
	Delete(ctx context.Context, id string) error
}

type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	List(ctx context.Context) ([]model.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ContentHandler serves publications, stories and contact messages.
type ContentHandler struct {
	Publications PublicationStore
	Stories      StoryStore
	Contacts     ContactStore
	Media        media.Uploader
	Cache        middleware.Purger
	Log          *zap.Logger
}

func (h *ContentHandler) purge(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Purge(ctx)
	}
}

func formText(c echo.Context, field string) string { return strings.TrimSpace(c.FormValue(field)) }

func bindID(c echo.Context) (string, bool) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	id := strings.TrimSpace(req.ID)
	return id, id != ""
}

// AddPublication: POST /api/publication/add (multipart)
func (h *ContentHandler) AddPublication(c echo.Context) error {
	p := &model.Publication{
		Title:       formText(c, "title"),
		Description: formText(c, "description"),
		Author:      formText(c, "author"),
	}
	if p.Title == "" {
		return failure(c, http.StatusBadRequest, "title is required")
	}
	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	p.Image = img
	ctx := c.Request().Context()
	if err := h.Publications.Create(ctx, p); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusCreated, echo.Map{"message": "Publication Added", "publication": p})
}

// UpdatePublication: POST /api/publication/update (multipart)
func (h *ContentHandler) UpdatePublication(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.Publications.GetByID(ctx, formText(c, "id"))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if v := formText(c, "title"); v != "" {
		p.Title = v
	}
	if v := formText(c, "description"); v != "" {
		p.Description = v
	}
	if v := formText(c, "author"); v != "" {
		p.Author = v
	}
	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if img != "" {
		p.Image = img
	}
	if err := h.Publications.Update(ctx, p); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Publication Updated", "publication": p})
}

func (h *ContentHandler) RemovePublication(c echo.Context) error {
	id, found := bindID(c)
	if !found {
		return failure(c, http.StatusBadRequest, "id is required")
	}
	ctx := c.Request().Context()
	if err := h.Publications.Delete(ctx, id); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Publication Removed"})
}

func (h *ContentHandler) ListPublications(c echo.Context) error {
	list, err := h.Publications.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"publications": list})
}

// AddStory: POST /api/story/add (multipart)
func (h *ContentHandler) AddStory(c echo.Context) error {
	s := &model.Story{
		Title:    formText(c, "title"),
		Content:  formText(c, "content"),
		Author:   formText(c, "author"),
		Location: formText(c, "location"),
	}
	if s.Title == "" || s.Content == "" {
		return failure(c, http.StatusBadRequest, "title and content are required")
	}
	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	s.Image = img
	ctx := c.Request().Context()
	if err := h.Stories.Create(ctx, s); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusCreated, echo.Map{"message": "Story Added", "story": s})
}

func (h *ContentHandler) UpdateStory(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Stories.GetByID(ctx, formText(c, "id"))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	for field, dst := range map[string]*string{
		"title":    &s.Title,
		"content":  &s.Content,
		"author":   &s.Author,
		"location": &s.Location,
	} {
		if v := formText(c, field); v != "" {
			*dst = v
		}
	}
	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if img != "" {
		s.Image = img
	}
	if err := h.Stories.Update(ctx, s); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Story Updated", "story": s})
}

func (h *ContentHandler) RemoveStory(c echo.Context) error {
	id, found := bindID(c)
	if !found {
		return failure(c, http.StatusBadRequest, "id is required")
	}
	ctx := c.Request().Context()
	if err := h.Stories.Delete(ctx, id); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Story Removed"})
}

func (h *ContentHandler) ListStories(c echo.Context) error {
	list, err := h.Stories.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"stories": list})
}

// CreateContact: POST /api/contact/create (public)
func (h *ContentHandler) CreateContact(c echo.Context) error {
	var req model.Contact
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	m := &model.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if m.Name == "" || m.Email == "" || m.Message == "" {
		return failure(c, http.StatusBadRequest, "name, email and message are required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return failure(c, http.StatusBadRequest, "Please enter a valid email")
	}
	if err := h.Contacts.Create(c.Request().Context(), m); err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Message received"})
}

func (h *ContentHandler) ListContacts(c echo.Context) error {
	list, err := h.Contacts.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"contacts": list})
}

func (h *ContentHandler) RemoveContact(c echo.Context) error {
	id, found := bindID(c)
	if !found {
		return failure(c, http.StatusBadRequest, "id is required")
	}
	if err := h.Contacts.Delete(c.Request().Context(), id); err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Message Removed"})
}
