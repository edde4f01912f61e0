package offerimport

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"math/bits"
	"os"
	"slices"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/unimart/storefront/internal/domain/offer"
)

// maxFiles bounds the per-code file bitmask.
const maxFiles = bits.UintSize

// maxLineSize is the longest accepted record line.
const maxLineSize = 1 << 20

// Writer persists imported offers.
type Writer interface {
	UpsertBatch(ctx context.Context, offers []offer.Offer) error
}

// Config tunes the importer. Zero values take defaults.
type Config struct {
	// ExpectedCodes sizes each per-file bloom filter.
	ExpectedCodes uint
	// FalsePositiveRate of the bloom filters.
	FalsePositiveRate float64
	BatchSize         int
	Now               func() time.Time
	Logger            *slog.Logger
}

func (c *Config) setDefaults() {
	if c.ExpectedCodes == 0 {
		c.ExpectedCodes = 1_000_000
	}
	if c.FalsePositiveRate <= 0 {
		c.FalsePositiveRate = 0.001
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Report summarizes an import.
type Report struct {
	Records int
	// Conflicts are coupon codes found in more than one file, sorted.
	Conflicts []string
	Rejected  int
	Skipped   int
	Written   int
}

// Importer loads offers from a set of files. A coupon code may be defined by
// one file only: codes present in two or more files are conflicts and every
// record carrying them is skipped.
type Importer struct {
	w   Writer
	cfg Config
}

// New returns an Importer writing to w.
func New(w Writer, cfg Config) *Importer {
	cfg.setDefaults()
	return &Importer{w: w, cfg: cfg}
}

// Run imports files in three passes. Pass 1 builds one bloom filter of
// coupon codes per file. Pass 2 tests each file's codes against the other
// files' filters and confirms the hits exactly. Pass 3 validates and writes
// the remaining records.
func (im *Importer) Run(ctx context.Context, files []string) (*Report, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}
	if len(files) > maxFiles {
		return nil, errors.Errorf("at most %d files per import, got %d", maxFiles, len(files))
	}
	lg := im.cfg.Logger

	lg.Info("pass 1: building bloom filters", slog.Int("files", len(files)))
	filters, err := im.buildFilters(ctx, files)
	if err != nil {
		return nil, errors.Wrap(err, "build bloom filters")
	}

	lg.Info("pass 2: finding conflicting coupon codes")
	conflicts, err := im.findConflicts(ctx, files, filters)
	if err != nil {
		return nil, errors.Wrap(err, "find conflicts")
	}
	lg.Info("conflicting codes found", slog.Int("count", len(conflicts)))

	lg.Info("pass 3: writing offers")
	report, err := im.write(ctx, files, conflicts)
	if err != nil {
		return nil, errors.Wrap(err, "write offers")
	}
	for code := range conflicts {
		report.Conflicts = append(report.Conflicts, code)
	}
	slices.Sort(report.Conflicts)
	return report, nil
}

func (im *Importer) buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(im.cfg.ExpectedCodes, im.cfg.FalsePositiveRate)
			var codes int
			err := streamFile(ctx, path, func(_ int, rec Record, err error) error {
				if err != nil {
					return nil
				}
				if code := NormalizeCode(rec.CouponCode); code != "" {
					filter.AddString(code)
					codes++
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "file %s", path)
			}
			im.cfg.Logger.Info("pass 1 complete", slog.String("file", path), slog.Int("codes", codes))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// findConflicts returns the codes present in two or more files. Bloom hits
// only nominate candidates; a code conflicts when at least two files
// nominated it themselves, which removes false positives.
func (im *Importer) findConflicts(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]struct{}, error) {
	found := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			bit := uint(1) << uint(i)
			err := streamFile(ctx, path, func(_ int, rec Record, err error) error {
				code := NormalizeCode(rec.CouponCode)
				if err != nil || code == "" {
					return nil
				}
				for j, f := range filters {
					if j != i && f.TestString(code) {
						candidates[code] |= bit
						break
					}
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "file %s", path)
			}
			found[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, candidates := range found {
		for code, mask := range candidates {
			merged[code] |= mask
		}
	}
	conflicts := make(map[string]struct{})
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			conflicts[code] = struct{}{}
		}
	}
	return conflicts, nil
}

func (im *Importer) write(ctx context.Context, files []string, conflicts map[string]struct{}) (*Report, error) {
	var (
		report Report
		batch  = make([]offer.Offer, 0, im.cfg.BatchSize)
		now    = im.cfg.Now()
		lg     = im.cfg.Logger
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.w.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		report.Written += len(batch)
		lg.Info("write progress", slog.Int("written", report.Written))
		batch = batch[:0]
		return nil
	}

	for _, path := range files {
		err := streamFile(ctx, path, func(line int, rec Record, err error) error {
			report.Records++
			if err != nil {
				report.Rejected++
				lg.Warn("malformed record", slog.String("file", path), slog.Int("line", line), slog.String("error", err.Error()))
				return nil
			}
			if _, ok := conflicts[NormalizeCode(rec.CouponCode)]; ok {
				report.Skipped++
				return nil
			}
			o, err := rec.Offer(now)
			if err != nil {
				report.Rejected++
				lg.Warn("invalid offer", slog.String("file", path), slog.Int("line", line), slog.String("error", err.Error()))
				return nil
			}
			batch = append(batch, o)
			if len(batch) == im.cfg.BatchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "file %s", path)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return &report, nil
}

// streamFile decodes each non-empty line of a gzip JSON-lines file. Decode
// failures are passed to fn rather than aborting the scan.
func streamFile(ctx context.Context, path string, fn func(line int, rec Record, err error) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec Record
		decodeErr := json.Unmarshal(data, &rec)
		if err := fn(line, rec, decodeErr); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan")
	}
	return nil
}
