package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/content"
)

const (
	createFeedbackSQL = `INSERT INTO feedback (id, user_id, name, email, phone, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listFeedbackSQL = `SELECT id, user_id, name, email, phone, comment, created_at
		FROM feedback ORDER BY created_at DESC`

	deleteFeedbackSQL = `DELETE FROM feedback WHERE id = $1`

	listSlidesSQL = `SELECT id, image_url, link, position, created_at FROM slides ORDER BY position, id`

	appendSlideSQL = `INSERT INTO slides (id, image_url, link, position, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4 FROM slides
		RETURNING position`

	listLinksSQL = `SELECT id, logo, url, position, created_at FROM links ORDER BY position, id`

	appendLinkSQL = `INSERT INTO links (id, logo, url, position, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4 FROM links
		RETURNING position`

	updateLinkSQL = `UPDATE links SET url = $2, logo = COALESCE(NULLIF($3, ''), logo)
		WHERE id = $1
		RETURNING logo, position, created_at`
)

var _ content.FeedbackRepository = (*FeedbackRepository)(nil)

// FeedbackRepository implements content.FeedbackRepository backed by PostgreSQL.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository returns a FeedbackRepository that uses the given pool.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *content.Feedback) error {
	_, err := r.pool.Exec(ctx, createFeedbackSQL,
		f.ID, f.UserID, f.Name, f.Email, f.Phone, f.Comment, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) List(ctx context.Context) ([]content.Feedback, error) {
	rows, err := r.pool.Query(ctx, listFeedbackSQL)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Feedback, error) {
		var f content.Feedback
		err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Email, &f.Phone, &f.Comment, &f.CreatedAt)
		return f, err
	})
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteFeedbackSQL, id)
	if err != nil {
		return fmt.Errorf("deleting feedback %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

// positioned holds the statements shared by tables whose rows carry a
// 1-based display position.
type positioned struct {
	table  string
	lock   string
	delete string
	// renumber closes gaps left by deletes.
	renumber string
	setPos   string
}

func newPositioned(table string) positioned {
	return positioned{
		table:  table,
		lock:   `LOCK TABLE ` + table + ` IN SHARE ROW EXCLUSIVE MODE`,
		delete: `DELETE FROM ` + table + ` WHERE id = $1`,
		renumber: `UPDATE ` + table + ` t SET position = r.rn
			FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY position, id) AS rn FROM ` + table + `) r
			WHERE t.id = r.id`,
		setPos: `UPDATE ` + table + ` SET position = $2 WHERE id = $1`,
	}
}

var (
	slidesTable = newPositioned("slides")
	linksTable  = newPositioned("links")
)

// appendRow runs insert under the table lock, so concurrent appends get
// distinct positions.
func (p positioned) appendRow(ctx context.Context, pool *pgxpool.Pool, insert func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, p.lock); err != nil {
			return fmt.Errorf("locking %s: %w", p.table, err)
		}
		return insert(tx)
	})
}

func (p positioned) deleteRow(ctx context.Context, pool *pgxpool.Pool, id string) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, p.lock); err != nil {
			return fmt.Errorf("locking %s: %w", p.table, err)
		}
		tag, err := tx.Exec(ctx, p.delete, id)
		if err != nil {
			return fmt.Errorf("deleting from %s %q: %w", p.table, id, err)
		}
		if tag.RowsAffected() == 0 {
			return content.ErrNotFound
		}
		if _, err := tx.Exec(ctx, p.renumber); err != nil {
			return fmt.Errorf("renumbering %s: %w", p.table, err)
		}
		return nil
	})
}

func (p positioned) setPositions(ctx context.Context, pool *pgxpool.Pool, positions map[string]int) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for id, pos := range positions {
			batch.Queue(p.setPos, id, pos)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("setting %s positions: %w", p.table, err)
		}
		return nil
	})
}

var _ content.SlideRepository = (*SlideRepository)(nil)

// SlideRepository implements content.SlideRepository backed by PostgreSQL.
type SlideRepository struct {
	pool *pgxpool.Pool
}

// NewSlideRepository returns a SlideRepository that uses the given pool.
func NewSlideRepository(pool *pgxpool.Pool) *SlideRepository {
	return &SlideRepository{pool: pool}
}

func (r *SlideRepository) List(ctx context.Context) ([]content.Slide, error) {
	rows, err := r.pool.Query(ctx, listSlidesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Slide, error) {
		var s content.Slide
		err := row.Scan(&s.ID, &s.ImageURL, &s.Link, &s.Position, &s.CreatedAt)
		return s, err
	})
}

// Append inserts s at the end of the slider and records its position on s.
func (r *SlideRepository) Append(ctx context.Context, s *content.Slide) error {
	return slidesTable.appendRow(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, appendSlideSQL, s.ID, s.ImageURL, s.Link, s.CreatedAt).Scan(&s.Position)
		if err != nil {
			return fmt.Errorf("appending slide: %w", err)
		}
		return nil
	})
}

// Delete removes a slide and closes the gap it leaves.
func (r *SlideRepository) Delete(ctx context.Context, id string) error {
	return slidesTable.deleteRow(ctx, r.pool, id)
}

func (r *SlideRepository) SetPositions(ctx context.Context, positions map[string]int) error {
	return slidesTable.setPositions(ctx, r.pool, positions)
}

var _ content.LinkRepository = (*LinkRepository)(nil)

// LinkRepository implements content.LinkRepository backed by PostgreSQL.
type LinkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository returns a LinkRepository that uses the given pool.
func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

func (r *LinkRepository) List(ctx context.Context) ([]content.Link, error) {
	rows, err := r.pool.Query(ctx, listLinksSQL)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Link, error) {
		var l content.Link
		err := row.Scan(&l.ID, &l.Logo, &l.URL, &l.Position, &l.CreatedAt)
		return l, err
	})
}

// Append inserts l at the end of the strip and records its position on l.
func (r *LinkRepository) Append(ctx context.Context, l *content.Link) error {
	return linksTable.appendRow(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, appendLinkSQL, l.ID, l.Logo, l.URL, l.CreatedAt).Scan(&l.Position)
		if err != nil {
			return fmt.Errorf("appending link: %w", err)
		}
		return nil
	})
}

func (r *LinkRepository) Update(ctx context.Context, l *content.Link) error {
	err := r.pool.QueryRow(ctx, updateLinkSQL, l.ID, l.URL, l.Logo).Scan(&l.Logo, &l.Position, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrNotFound
		}
		return fmt.Errorf("updating link %q: %w", l.ID, err)
	}
	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	return linksTable.deleteRow(ctx, r.pool, id)
}

func (r *LinkRepository) SetPositions(ctx context.Context, positions map[string]int) error {
	return linksTable.setPositions(ctx, r.pool, positions)
}
