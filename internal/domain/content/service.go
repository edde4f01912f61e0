package content

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service manages feedback, slides and links.
type Service struct {
	feedback FeedbackRepository
	slides   SlideRepository
	links    LinkRepository
	now      func() time.Time
}

// NewService creates a content Service.
func NewService(feedback FeedbackRepository, slides SlideRepository, links LinkRepository) *Service {
	return &Service{feedback: feedback, slides: slides, links: links, now: time.Now}
}

// SubmitFeedback stores a customer comment.
func (s *Service) SubmitFeedback(ctx context.Context, f Feedback) (*Feedback, error) {
	f.Comment = strings.TrimSpace(f.Comment)
	if f.Comment == "" {
		return nil, ErrCommentRequired
	}
	f.ID = uuid.New().String()
	f.CreatedAt = s.now()
	if err := s.feedback.Create(ctx, &f); err != nil {
		return nil, errors.Wrap(err, "create feedback")
	}
	return &f, nil
}

func (s *Service) ListFeedback(ctx context.Context) ([]Feedback, error) {
	return s.feedback.List(ctx)
}

func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	return s.feedback.Delete(ctx, id)
}

func (s *Service) ListSlides(ctx context.Context) ([]Slide, error) {
	return s.slides.List(ctx)
}

// AddSlide appends a slide to the end of the slider.
func (s *Service) AddSlide(ctx context.Context, imageURL, link string) (*Slide, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, ErrImageRequired
	}
	sl := &Slide{
		ID:        uuid.New().String(),
		ImageURL:  imageURL,
		Link:      strings.TrimSpace(link),
		CreatedAt: s.now(),
	}
	if err := s.slides.Append(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "append slide")
	}
	return sl, nil
}

func (s *Service) DeleteSlide(ctx context.Context, id string) error {
	return s.slides.Delete(ctx, id)
}

// ReorderSlides assigns positions 1..n following the order of ids.
func (s *Service) ReorderSlides(ctx context.Context, ids []string) error {
	positions, err := positionsOf(ids)
	if err != nil {
		return err
	}
	if err := s.slides.SetPositions(ctx, positions); err != nil {
		return errors.Wrap(err, "reorder slides")
	}
	return nil
}

func (s *Service) ListLinks(ctx context.Context) ([]Link, error) {
	return s.links.List(ctx)
}

// AddLink appends a link to the end of the strip.
func (s *Service) AddLink(ctx context.Context, logo, url string) (*Link, error) {
	logo, url = strings.TrimSpace(logo), strings.TrimSpace(url)
	if logo == "" {
		return nil, ErrLogoRequired
	}
	if url == "" {
		return nil, ErrURLRequired
	}
	l := &Link{
		ID:        uuid.New().String(),
		Logo:      logo,
		URL:       url,
		CreatedAt: s.now(),
	}
	if err := s.links.Append(ctx, l); err != nil {
		return nil, errors.Wrap(err, "append link")
	}
	return l, nil
}

// UpdateLink changes the url of a link. An empty logo keeps the current one.
func (s *Service) UpdateLink(ctx context.Context, id, logo, url string) (*Link, error) {
	l := &Link{ID: id, Logo: strings.TrimSpace(logo), URL: strings.TrimSpace(url)}
	if l.URL == "" {
		return nil, ErrURLRequired
	}
	if err := s.links.Update(ctx, l); err != nil {
		return nil, errors.Wrapf(err, "update link %s", id)
	}
	return l, nil
}

func (s *Service) DeleteLink(ctx context.Context, id string) error {
	return s.links.Delete(ctx, id)
}

// ReorderLinks assigns positions 1..n following the order of ids.
func (s *Service) ReorderLinks(ctx context.Context, ids []string) error {
	positions, err := positionsOf(ids)
	if err != nil {
		return err
	}
	if err := s.links.SetPositions(ctx, positions); err != nil {
		return errors.Wrap(err, "reorder links")
	}
	return nil
}

func positionsOf(ids []string) (map[string]int, error) {
	positions := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := positions[id]; dup {
			return nil, errors.Wrap(ErrDuplicateID, id)
		}
		positions[id] = i + 1
	}
	return positions, nil
}
