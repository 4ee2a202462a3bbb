package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// PublicationRepo, StoryRepo and ContactRepo back the site content pages.
// They share the same shape: create, list newest first, get, update, delete.

type PublicationRepo struct{ db *sql.DB }

func NewPublicationRepo(db *sql.DB) *PublicationRepo { return &PublicationRepo{db: db} }

const publicationColumns = `id, title, description, author, image, created_at`

func scanPublication(s rowScanner) (*model.Publication, error) {
	var p model.Publication
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Author, &p.Image, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PublicationRepo) Create(ctx context.Context, p *model.Publication) error {
	stamp(&p.ID, &p.CreatedAt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publications (id, title, description, author, image, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Author, p.Image, p.CreatedAt)
	return err
}

func (r *PublicationRepo) GetByID(ctx context.Context, id string) (*model.Publication, error) {
	return scanPublication(r.db.QueryRowContext(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = ?`, id))
}

func (r *PublicationRepo) List(ctx context.Context) ([]model.Publication, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+publicationColumns+` FROM publications ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PublicationRepo) Update(ctx context.Context, p *model.Publication) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE publications SET title = ?, description = ?, author = ?, image = ? WHERE id = ?`,
		p.Title, p.Description, p.Author, p.Image, p.ID))
}

func (r *PublicationRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id))
}

type StoryRepo struct{ db *sql.DB }

func NewStoryRepo(db *sql.DB) *StoryRepo { return &StoryRepo{db: db} }

const storyColumns = `id, title, content, author, location, image, created_at`

func scanStory(s rowScanner) (*model.Story, error) {
	var st model.Story
	if err := s.Scan(&st.ID, &st.Title, &st.Content, &st.Author, &st.Location, &st.Image, &st.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (r *StoryRepo) Create(ctx context.Context, s *model.Story) error {
	stamp(&s.ID, &s.CreatedAt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stories (id, title, content, author, location, image, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Title, s.Content, s.Author, s.Location, s.Image, s.CreatedAt)
	return err
}

func (r *StoryRepo) GetByID(ctx context.Context, id string) (*model.Story, error) {
	return scanStory(r.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE id = ?`, id))
}

func (r *StoryRepo) List(ctx context.Context) ([]model.Story, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM stories ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Story{}
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *StoryRepo) Update(ctx context.Context, s *model.Story) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE stories SET title = ?, content = ?, author = ?, location = ?, image = ? WHERE id = ?`,
		s.Title, s.Content, s.Author, s.Location, s.Image, s.ID))
}

func (r *StoryRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id))
}

type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	stamp(&c.ID, &c.CreatedAt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Subject, c.Message, c.CreatedAt)
	return err
}

func (r *ContactRepo) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, subject, message, created_at FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id))
}

// stamp assigns a fresh UUID and creation time when they are unset.
func stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = time.Now().UTC()
	}
}
