package offerimport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimart/storefront/internal/domain/offer"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeWriter struct {
	batches [][]offer.Offer
	err     error
}

func (w *fakeWriter) UpsertBatch(_ context.Context, offers []offer.Offer) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]offer.Offer(nil), offers...))
	return nil
}

func (w *fakeWriter) all() []offer.Offer {
	var out []offer.Offer
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

// writeFile writes lines as a gzip JSON-lines file. Strings are written
// verbatim, anything else is JSON-encoded.
func writeFile(t *testing.T, dir, name string, lines ...any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	gz := pgzip.NewWriter(f)
	for _, line := range lines {
		data, ok := line.(string)
		if !ok {
			b, err := json.Marshal(line)
			require.NoError(t, err)
			data = string(b)
		}
		_, err := gz.Write([]byte(data + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return path
}

func cartRecord(code string, flat int64) Record {
	return Record{
		Title:         "Coupon " + code,
		ScopeType:     offer.ScopeCart,
		DiscountType:  offer.DiscountFlat,
		DiscountValue: decimal.NewFromInt(flat),
		MinCartAmount: decimal.NewFromInt(500),
		CouponCode:    code,
	}
}

func newImporter(w Writer, batch int) *Importer {
	return New(w, Config{
		ExpectedCodes: 1000,
		BatchSize:     batch,
		Now:           func() time.Time { return testNow },
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestImporter_Run(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl.gz",
		cartRecord("SAVE10", 10),
		cartRecord(" shared ", 20),
		cartRecord("ONLYA", 30),
	)
	b := writeFile(t, dir, "b.jsonl.gz",
		cartRecord("SHARED", 40),
		cartRecord("ONLYB", 50),
		"{not json",
		Record{Title: "no scope", DiscountType: offer.DiscountFlat, CouponCode: "NOSCOPE"},
	)

	w := &fakeWriter{}
	report, err := newImporter(w, 2).Run(context.Background(), []string{a, b})
	require.NoError(t, err)

	assert.Equal(t, 7, report.Records)
	assert.Equal(t, []string{"SHARED"}, report.Conflicts)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, 3, report.Written)

	var codes []string
	for _, o := range w.all() {
		codes = append(codes, o.CouponCode)
	}
	assert.ElementsMatch(t, []string{"SAVE10", "ONLYA", "ONLYB"}, codes)
	assert.Len(t, w.batches, 2, "batches of two plus the remainder")
}

func TestImporter_DuplicateWithinFileIsNotConflict(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl.gz", cartRecord("AGAIN", 10), cartRecord("AGAIN", 15))
	b := writeFile(t, dir, "b.jsonl.gz", cartRecord("OTHER", 10))

	w := &fakeWriter{}
	report, err := newImporter(w, 10).Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Empty(t, report.Conflicts)
	assert.Equal(t, 3, report.Written)
}

func TestImporter_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.jsonl.gz", cartRecord("X", 1))

	plain := filepath.Join(dir, "plain.jsonl")
	require.NoError(t, os.WriteFile(plain, []byte("{}\n"), 0o600))

	tests := []struct {
		name  string
		files []string
		w     *fakeWriter
	}{
		{name: "NoFiles", files: nil, w: &fakeWriter{}},
		{name: "Missing", files: []string{filepath.Join(dir, "missing.gz")}, w: &fakeWriter{}},
		{name: "NotGzip", files: []string{plain}, w: &fakeWriter{}},
		{name: "WriterFails", files: []string{good}, w: &fakeWriter{err: errors.New("db down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newImporter(tt.w, 10).Run(context.Background(), tt.files)
			require.Error(t, err)
		})
	}
}

func TestImporter_Canceled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl.gz", cartRecord("X", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newImporter(&fakeWriter{}, 10).Run(ctx, []string{a})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecord_Offer(t *testing.T) {
	no := false
	end := testNow.Add(48 * time.Hour)

	t.Run("DerivedID", func(t *testing.T) {
		first, err := cartRecord(" save5 ", 5).Offer(testNow)
		require.NoError(t, err)
		second, err := cartRecord("SAVE5", 5).Offer(testNow)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "SAVE5", first.CouponCode)
		assert.True(t, first.AutoApply)
		assert.True(t, first.Active)
		require.NotNil(t, first.StartDate)
		assert.Equal(t, testNow, *first.StartDate)
	})
	t.Run("ExplicitFields", func(t *testing.T) {
		rec := Record{
			ID:            "offer-1",
			Title:         "Phones",
			ScopeType:     offer.ScopeSubcategory,
			SubcategoryID: "phones",
			DiscountType:  offer.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(15),
			AutoApply:     &no,
			Active:        &no,
			EndDate:       &end,
		}
		o, err := rec.Offer(testNow)
		require.NoError(t, err)
		assert.Equal(t, "offer-1", o.ID)
		assert.Equal(t, offer.SubcategoryScope{SubcategoryID: "phones"}, o.Scope)
		assert.False(t, o.AutoApply)
		assert.False(t, o.Active)
		assert.Equal(t, &end, o.EndDate)
	})
	t.Run("NoIdentity", func(t *testing.T) {
		rec := cartRecord("", 5)
		_, err := rec.Offer(testNow)
		require.Error(t, err)
	})
	t.Run("Invalid", func(t *testing.T) {
		rec := cartRecord("BIG", 5)
		rec.DiscountType = offer.DiscountPercentage
		rec.DiscountValue = decimal.NewFromInt(150)
		_, err := rec.Offer(testNow)
		var verr *offer.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "discountValue", verr.Field)
	})
}
