// Package handler implements the storefront HTTP API on a chi router.
package handler

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/unimart/storefront/internal/domain/auth"
	"github.com/unimart/storefront/internal/domain/cart"
	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/content"
	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/order"
	"github.com/unimart/storefront/internal/domain/product"
)

// OfferService manages offers and exposes the active snapshot.
type OfferService interface {
	List(ctx context.Context) ([]offer.Offer, error)
	Active(ctx context.Context) ([]offer.Offer, error)
	Get(ctx context.Context, id string) (*offer.Offer, error)
	Create(ctx context.Context, o offer.Offer) (*offer.Offer, error)
	Update(ctx context.Context, o offer.Offer) (*offer.Offer, error)
	Delete(ctx context.Context, id string) error
}

// ProductService is the offer-aware catalog.
type ProductService interface {
	List(ctx context.Context, query string) ([]product.Priced, error)
	Get(ctx context.Context, id string) (*product.Priced, error)
	Create(ctx context.Context, d product.Draft) (*product.Product, error)
	Update(ctx context.Context, id string, d product.Draft) (*product.Product, error)
	Delete(ctx context.Context, id string) error
}

// CategoryService manages categories and their subcategories.
type CategoryService interface {
	List(ctx context.Context) ([]category.Category, error)
	Get(ctx context.Context, id string) (*category.Category, error)
	Create(ctx context.Context, name, description string, image category.Image) (*category.Category, error)
	Update(ctx context.Context, id, name, description string, image category.Image) (*category.Category, error)
	Delete(ctx context.Context, id string) error
	AddSubcategory(ctx context.Context, categoryID, name, description string, image category.Image) (*category.Category, error)
	UpdateSubcategory(ctx context.Context, categoryID, subID, name, description string, image category.Image) (*category.Category, error)
	DeleteSubcategory(ctx context.Context, categoryID, subID string) (*category.Category, error)
}

// CartService manages the caller's cart.
type CartService interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	Add(ctx context.Context, userID, productID string, qty int) (*cart.Cart, error)
	Increment(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Decrement(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
	Quote(ctx context.Context, userID string) (*cart.Quote, error)
}

// OrderService places and manages orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error)
	ListMine(ctx context.Context, userID string) ([]order.Order, error)
	Cancel(ctx context.Context, userID, id string) (*order.Order, error)
	ListAll(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) (*order.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*order.Stats, error)
}

// ContentService manages feedback, the home page slider and brand links.
type ContentService interface {
	SubmitFeedback(ctx context.Context, f content.Feedback) (*content.Feedback, error)
	ListFeedback(ctx context.Context) ([]content.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
	ListSlides(ctx context.Context) ([]content.Slide, error)
	AddSlide(ctx context.Context, imageURL, link string) (*content.Slide, error)
	DeleteSlide(ctx context.Context, id string) error
	ReorderSlides(ctx context.Context, ids []string) error
	ListLinks(ctx context.Context) ([]content.Link, error)
	AddLink(ctx context.Context, logo, url string) (*content.Link, error)
	UpdateLink(ctx context.Context, id, logo, url string) (*content.Link, error)
	DeleteLink(ctx context.Context, id string) error
	ReorderLinks(ctx context.Context, ids []string) error
}

// CustomerService lists and revokes customer identities.
type CustomerService interface {
	List(ctx context.Context) ([]auth.Customer, error)
	Delete(ctx context.Context, id string) error
}

// Authenticator resolves API keys to principals.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*auth.Principal, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Services bundles the domain services the API delegates to.
type Services struct {
	Offers     OfferService
	Products   ProductService
	Categories CategoryService
	Carts      CartService
	Orders     OrderService
	Content    ContentService
	Customers  CustomerService
	Auth       Authenticator
}

// Handler serves the storefront API.
type Handler struct {
	Services

	imageBaseURL string
	metrics      *metrics
}

// New constructs a Handler. Business counters are registered on mp.
func New(cfg Config, svc Services, mp metric.MeterProvider) (*Handler, error) {
	m, err := newMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Handler{
		Services:     svc,
		imageBaseURL: cfg.ImageBaseURL,
		metrics:      m,
	}, nil
}
