// Package content holds customer feedback, the home page slider and the
// brand link strip.
package content

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCommentRequired = errors.New("comment is required")
	ErrImageRequired   = errors.New("image url is required")
	ErrLogoRequired    = errors.New("logo is required")
	ErrURLRequired     = errors.New("link url is required")
	// ErrDuplicateID is returned when a reorder lists the same id twice.
	ErrDuplicateID = errors.New("id listed twice")
)

// Feedback is a comment left by a customer.
type Feedback struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	Comment   string
	CreatedAt time.Time
}

// Slide is a home page slider image. Positions start at 1.
type Slide struct {
	ID        string
	ImageURL  string
	Link      string
	Position  int
	CreatedAt time.Time
}

// Link is a brand logo pointing to an external page. Positions start at 1.
type Link struct {
	ID        string
	Logo      string
	URL       string
	Position  int
	CreatedAt time.Time
}

// FeedbackRepository defines persistence operations for feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	// List returns feedback newest first.
	List(ctx context.Context) ([]Feedback, error)
	Delete(ctx context.Context, id string) error
}

// SlideRepository defines persistence operations for slides.
type SlideRepository interface {
	// List returns slides ordered by position.
	List(ctx context.Context) ([]Slide, error)
	// Append stores s after the last slide and sets its position.
	Append(ctx context.Context, s *Slide) error
	// Delete removes a slide and renumbers the rest from 1.
	Delete(ctx context.Context, id string) error
	SetPositions(ctx context.Context, positions map[string]int) error
}

// LinkRepository defines persistence operations for links.
type LinkRepository interface {
	// List returns links ordered by position.
	List(ctx context.Context) ([]Link, error)
	// Append stores l after the last link and sets its position.
	Append(ctx context.Context, l *Link) error
	// Update replaces the url of a link, and its logo when l.Logo is set.
	// l is filled with the stored row.
	Update(ctx context.Context, l *Link) error
	// Delete removes a link and renumbers the rest from 1.
	Delete(ctx context.Context, id string) error
	SetPositions(ctx context.Context, positions map[string]int) error
}
