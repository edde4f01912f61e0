package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/unimart/storefront/internal/domain/auth"
	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/product"
	"github.com/unimart/storefront/internal/offerimport"
	"github.com/unimart/storefront/internal/repository"
)

type catalogJSON struct {
	Categories []categoryJSON        `json:"categories"`
	Products   []productJSON         `json:"products"`
	Offers     []offerimport.Record `json:"offers"`
}

type categoryJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Subcategories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"subcategories"`
}

type productJSON struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	CategoryID    string          `json:"categoryId"`
	SubcategoryID string          `json:"subcategoryId"`
	Images        []string        `json:"images"`
}

type seedKey struct {
	id, name, key string
	scopes        []string
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		customerKey  string
		adminKey     string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&customerKey, "customer-key", "", "customer API key to seed (or UNIMART_SEED_CUSTOMER_KEY env)")
	flag.StringVar(&adminKey, "admin-key", "", "admin API key to seed (or UNIMART_SEED_ADMIN_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or UNIMART_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if customerKey == "" {
		customerKey = os.Getenv("UNIMART_SEED_CUSTOMER_KEY")
	}
	if adminKey == "" {
		adminKey = os.Getenv("UNIMART_SEED_ADMIN_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("UNIMART_API_KEY_PEPPER")
	}

	var keys []seedKey
	if customerKey != "" {
		keys = append(keys, seedKey{id: "customer", name: "Demo customer", key: customerKey, scopes: []string{auth.ScopeCustomer}})
	}
	if adminKey != "" {
		keys = append(keys, seedKey{id: "admin", name: "Store admin", key: adminKey, scopes: []string{auth.ScopeAdmin}})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, keys, []byte(apiKeyPepper)); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string, keys []seedKey, pepper []byte) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	now := time.Now().UTC()
	if err := seedCategories(ctx, pool, catalog.Categories, now); err != nil {
		return errors.Wrap(err, "seed categories")
	}
	if err := seedProducts(ctx, pool, catalog, now); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedOffers(ctx, pool, catalog.Offers, now); err != nil {
		return errors.Wrap(err, "seed offers")
	}
	if err := seedAPIKeys(ctx, pool, keys, pepper); err != nil {
		return errors.Wrap(err, "seed api keys")
	}

	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categories []categoryJSON, now time.Time) error {
	repo := repository.NewCategoryRepository(pool)

	slog.Info("upserting categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		cat := &category.Category{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   now,
		}
		for _, s := range c.Subcategories {
			cat.Subcategories = append(cat.Subcategories, category.Subcategory{ID: s.ID, Name: s.Name})
		}

		err := repo.Update(ctx, cat)
		if errors.Is(err, category.ErrNotFound) {
			err = repo.Create(ctx, cat)
		}
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}

		slog.Info("upserted category", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, catalog catalogJSON, now time.Time) error {
	repo := repository.NewProductRepository(pool)

	subNames := make(map[string]string)
	for _, c := range catalog.Categories {
		for _, s := range c.Subcategories {
			subNames[s.ID] = s.Name
		}
	}

	slog.Info("upserting products", slog.Int("count", len(catalog.Products)))

	for _, p := range catalog.Products {
		prod := &product.Product{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			CategoryID:  p.CategoryID,
			Subcategory: product.Subcategory{ID: p.SubcategoryID, Name: subNames[p.SubcategoryID]},
			CreatedAt:   now,
		}
		for _, img := range p.Images {
			prod.Images = append(prod.Images, product.Image{URL: img})
		}

		err := repo.Update(ctx, prod)
		if errors.Is(err, product.ErrNotFound) {
			err = repo.Create(ctx, prod)
		}
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool, records []offerimport.Record, now time.Time) error {
	offers := make([]offer.Offer, 0, len(records))
	for _, rec := range records {
		o, err := rec.Offer(now)
		if err != nil {
			return errors.Wrapf(err, "offer %q", rec.Title)
		}
		offers = append(offers, o)
	}

	slog.Info("upserting offers", slog.Int("count", len(offers)))

	if err := repository.NewOfferRepository(pool).UpsertBatch(ctx, offers); err != nil {
		return err
	}
	return nil
}

func seedAPIKeys(ctx context.Context, pool *pgxpool.Pool, keys []seedKey, pepper []byte) error {
	if len(keys) == 0 {
		slog.Warn("no API keys given, skipping")
		return nil
	}

	repo := repository.NewAPIKeyRepository(pool)
	for _, k := range keys {
		if err := repo.Upsert(ctx, auth.APIKeyInfo{
			ID:      k.id,
			KeyHash: auth.HashKey(pepper, k.key),
			Name:    k.name,
			Scopes:  k.scopes,
		}); err != nil {
			return errors.Wrapf(err, "upsert API key %s", k.id)
		}

		slog.Info("upserted API key", slog.String("id", k.id), slog.Any("scopes", k.scopes))
	}

	return nil
}
