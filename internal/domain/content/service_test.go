package content

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFeedback struct {
	items []Feedback
}

func (m *memFeedback) Create(_ context.Context, f *Feedback) error {
	m.items = append(m.items, *f)
	return nil
}

func (m *memFeedback) List(_ context.Context) ([]Feedback, error) { return m.items, nil }

func (m *memFeedback) Delete(_ context.Context, id string) error {
	for i, f := range m.items {
		if f.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memSlides struct {
	items []Slide
}

func (m *memSlides) List(_ context.Context) ([]Slide, error) {
	out := append([]Slide(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memSlides) Append(_ context.Context, s *Slide) error {
	s.Position = len(m.items) + 1
	m.items = append(m.items, *s)
	return nil
}

func (m *memSlides) Delete(_ context.Context, id string) error {
	kept := m.items[:0]
	for _, s := range m.items {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.items = kept
	for i := range m.items {
		m.items[i].Position = i + 1
	}
	return nil
}

func (m *memSlides) SetPositions(_ context.Context, positions map[string]int) error {
	for i := range m.items {
		if p, ok := positions[m.items[i].ID]; ok {
			m.items[i].Position = p
		}
	}
	return nil
}

type memLinks struct {
	items []Link
}

func (m *memLinks) List(_ context.Context) ([]Link, error) {
	out := append([]Link(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memLinks) Append(_ context.Context, l *Link) error {
	l.Position = len(m.items) + 1
	m.items = append(m.items, *l)
	return nil
}

func (m *memLinks) Update(_ context.Context, l *Link) error {
	for i := range m.items {
		if m.items[i].ID != l.ID {
			continue
		}
		m.items[i].URL = l.URL
		if l.Logo != "" {
			m.items[i].Logo = l.Logo
		}
		*l = m.items[i]
		return nil
	}
	return ErrNotFound
}

func (m *memLinks) Delete(_ context.Context, id string) error {
	kept := m.items[:0]
	for _, l := range m.items {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(m.items) {
		return ErrNotFound
	}
	m.items = kept
	for i := range m.items {
		m.items[i].Position = i + 1
	}
	return nil
}

func (m *memLinks) SetPositions(_ context.Context, positions map[string]int) error {
	for i := range m.items {
		if p, ok := positions[m.items[i].ID]; ok {
			m.items[i].Position = p
		}
	}
	return nil
}

func TestSubmitFeedback(t *testing.T) {
	repo := &memFeedback{}
	svc := NewService(repo, &memSlides{}, &memLinks{})

	_, err := svc.SubmitFeedback(context.Background(), Feedback{UserID: "u1", Comment: "  "})
	require.ErrorIs(t, err, ErrCommentRequired)

	f, err := svc.SubmitFeedback(context.Background(), Feedback{UserID: "u1", Comment: " Great rice "})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Great rice", f.Comment)
	assert.Len(t, repo.items, 1)
}

func TestSlides(t *testing.T) {
	slides := &memSlides{}
	svc := NewService(&memFeedback{}, slides, &memLinks{})
	ctx := context.Background()

	_, err := svc.AddSlide(ctx, "", "")
	require.ErrorIs(t, err, ErrImageRequired)

	var ids []string
	for _, url := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		s, err := svc.AddSlide(ctx, url, "")
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	assert.Equal(t, 3, slides.items[2].Position)

	require.NoError(t, svc.ReorderSlides(ctx, []string{ids[2], ids[0], ids[1]}))
	got, err := svc.ListSlides(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c.jpg", got[0].ImageURL)

	require.ErrorIs(t, svc.ReorderSlides(ctx, []string{ids[0], ids[0]}), ErrDuplicateID)

	require.NoError(t, svc.DeleteSlide(ctx, ids[1]))
	got, err = svc.ListSlides(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, 2, got[1].Position)
}

func TestLinks_Add(t *testing.T) {
	tests := []struct {
		name    string
		logo    string
		url     string
		wantErr error
	}{
		{name: "Valid", logo: "brands/acme.png", url: "https://acme.example"},
		{name: "NoLogo", logo: " ", url: "https://acme.example", wantErr: ErrLogoRequired},
		{name: "NoURL", logo: "brands/acme.png", url: "", wantErr: ErrURLRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := &memLinks{}
			svc := NewService(&memFeedback{}, &memSlides{}, links)

			l, err := svc.AddLink(context.Background(), tt.logo, tt.url)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, links.items)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, l.ID)
			assert.Equal(t, 1, l.Position)
		})
	}
}

func TestLinks(t *testing.T) {
	links := &memLinks{}
	svc := NewService(&memFeedback{}, &memSlides{}, links)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"acme", "globex", "initech"} {
		l, err := svc.AddLink(ctx, "brands/"+name+".png", "https://"+name+".example")
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	assert.Equal(t, 3, links.items[2].Position)

	updated, err := svc.UpdateLink(ctx, ids[0], "", " https://acme.example/shop ")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example/shop", updated.URL)
	assert.Equal(t, "brands/acme.png", updated.Logo, "empty logo keeps the stored one")

	_, err = svc.UpdateLink(ctx, ids[0], "", "")
	require.ErrorIs(t, err, ErrURLRequired)
	_, err = svc.UpdateLink(ctx, "missing", "", "https://x.example")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.ReorderLinks(ctx, []string{ids[2], ids[0], ids[1]}))
	got, err := svc.ListLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[2], got[0].ID)

	require.ErrorIs(t, svc.ReorderLinks(ctx, []string{ids[1], ids[1]}), ErrDuplicateID)

	require.NoError(t, svc.DeleteLink(ctx, ids[0]))
	got, err = svc.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, []int{got[0].Position, got[1].Position})
	require.ErrorIs(t, svc.DeleteLink(ctx, ids[0]), ErrNotFound)
}
