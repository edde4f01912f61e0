package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unimart/storefront/internal/domain/cart"
	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/content"
	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/order"
	"github.com/unimart/storefront/internal/domain/product"
)

// Money leaves the API as JSON numbers; requests may send numbers or strings.

type offerRequest struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	ScopeType     offer.ScopeType    `json:"scopeType"`
	CategoryID    string             `json:"categoryId"`
	SubcategoryID string             `json:"subcategoryId"`
	ProductID     string             `json:"productId"`
	DiscountType  offer.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	MinCartAmount decimal.Decimal    `json:"minCartAmount"`
	MinMRP        decimal.Decimal    `json:"minMrp"`
	CouponCode    string             `json:"couponCode"`
	AutoApply     *bool              `json:"autoApply"`
	Active        *bool              `json:"active"`
	StartDate     *time.Time         `json:"startDate"`
	EndDate       *time.Time         `json:"endDate"`
}

func (req offerRequest) target() string {
	switch req.ScopeType {
	case offer.ScopeProduct:
		return req.ProductID
	case offer.ScopeSubcategory:
		return req.SubcategoryID
	case offer.ScopeCategory:
		return req.CategoryID
	default:
		return ""
	}
}

// toOffer builds the domain offer. New offers are active and auto-applied
// unless the request says otherwise.
func (req offerRequest) toOffer(id string) (offer.Offer, error) {
	scope, err := offer.NewScope(req.ScopeType, strings.TrimSpace(req.target()))
	if err != nil {
		return offer.Offer{}, err
	}
	o := offer.Offer{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Scope:         scope,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinCartAmount: req.MinCartAmount,
		MinMRP:        req.MinMRP,
		CouponCode:    strings.TrimSpace(req.CouponCode),
		AutoApply:     true,
		Active:        true,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.AutoApply != nil {
		o.AutoApply = *req.AutoApply
	}
	if req.Active != nil {
		o.Active = *req.Active
	}
	return o, nil
}

type offerResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ScopeType     string     `json:"scopeType"`
	CategoryID    string     `json:"categoryId,omitempty"`
	SubcategoryID string     `json:"subcategoryId,omitempty"`
	ProductID     string     `json:"productId,omitempty"`
	DiscountType  string     `json:"discountType"`
	DiscountValue float64    `json:"discountValue"`
	MinCartAmount float64    `json:"minCartAmount"`
	MinMRP        float64    `json:"minMrp"`
	CouponCode    string     `json:"couponCode,omitempty"`
	AutoApply     bool       `json:"autoApply"`
	Active        bool       `json:"active"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func offerToResponse(o offer.Offer) offerResponse {
	resp := offerResponse{
		ID:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		ScopeType:     string(offer.ScopeTypeOf(o)),
		DiscountType:  string(o.DiscountType),
		DiscountValue: o.DiscountValue.InexactFloat64(),
		MinCartAmount: o.MinCartAmount.InexactFloat64(),
		MinMRP:        o.MinMRP.InexactFloat64(),
		CouponCode:    o.CouponCode,
		AutoApply:     o.AutoApply,
		Active:        o.Active,
		StartDate:     o.StartDate,
		EndDate:       o.EndDate,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	switch s := o.Scope.(type) {
	case offer.ProductScope:
		resp.ProductID = s.ProductID
	case offer.SubcategoryScope:
		resp.SubcategoryID = s.SubcategoryID
	case offer.CategoryScope:
		resp.CategoryID = s.CategoryID
	}
	return resp
}

func offersToResponse(offers []offer.Offer) []offerResponse {
	out := make([]offerResponse, len(offers))
	for i, o := range offers {
		out[i] = offerToResponse(o)
	}
	return out
}

// appliedOffer is the compact offer reference attached to priced entities.
type appliedOffer struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ScopeType     string  `json:"scopeType"`
	DiscountType  string  `json:"discountType"`
	DiscountValue float64 `json:"discountValue"`
}

func toApplied(o *offer.Offer) *appliedOffer {
	if o == nil {
		return nil
	}
	return &appliedOffer{
		ID:            o.ID,
		Title:         o.Title,
		ScopeType:     string(offer.ScopeTypeOf(*o)),
		DiscountType:  string(o.DiscountType),
		DiscountValue: o.DiscountValue.InexactFloat64(),
	}
}

type imageJSON struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

type productRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	CategoryID    string          `json:"categoryId"`
	SubcategoryID string          `json:"subcategoryId"`
	Images        []imageJSON     `json:"images"`
}

func (req productRequest) toDraft() product.Draft {
	images := make([]product.Image, len(req.Images))
	for i, img := range req.Images {
		images[i] = product.Image{URL: img.URL, PublicID: img.PublicID}
	}
	return product.Draft{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Images:        images,
	}
}

type productResponse struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Price           float64       `json:"price"`
	FinalPrice      *float64      `json:"finalPrice,omitempty"`
	AppliedOffer    *appliedOffer `json:"appliedOffer,omitempty"`
	Stock           int           `json:"stock"`
	CategoryID      string        `json:"categoryId"`
	SubcategoryID   string        `json:"subcategoryId"`
	SubcategoryName string        `json:"subcategoryName,omitempty"`
	Images          []imageJSON   `json:"images"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// imageURL prepends the configured base to relative image paths.
func (h *Handler) imageURL(u string) string {
	if h.imageBaseURL == "" || u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(u, "/")
}

func (h *Handler) productToResponse(p product.Product) productResponse {
	images := make([]imageJSON, len(p.Images))
	for i, img := range p.Images {
		images[i] = imageJSON{URL: h.imageURL(img.URL), PublicID: img.PublicID}
	}
	return productResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		Stock:           p.Stock,
		CategoryID:      p.CategoryID,
		SubcategoryID:   p.Subcategory.ID,
		SubcategoryName: p.Subcategory.Name,
		Images:          images,
		CreatedAt:       p.CreatedAt,
	}
}

func (h *Handler) pricedToResponse(p product.Priced) productResponse {
	resp := h.productToResponse(p.Product)
	final := p.FinalPrice.InexactFloat64()
	resp.FinalPrice = &final
	resp.AppliedOffer = toApplied(p.AppliedOffer)
	return resp
}

type categoryRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       imageJSON `json:"image"`
}

func (req categoryRequest) image() category.Image {
	return category.Image{URL: req.Image.URL, PublicID: req.Image.PublicID}
}

type subcategoryResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Image       *imageJSON `json:"image,omitempty"`
}

type categoryResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Image         *imageJSON            `json:"image,omitempty"`
	Subcategories []subcategoryResponse `json:"subcategories"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func (h *Handler) categoryImage(img category.Image) *imageJSON {
	if img.URL == "" {
		return nil
	}
	return &imageJSON{URL: h.imageURL(img.URL), PublicID: img.PublicID}
}

func (h *Handler) categoryToResponse(c category.Category) categoryResponse {
	subs := make([]subcategoryResponse, len(c.Subcategories))
	for i, s := range c.Subcategories {
		subs[i] = subcategoryResponse{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Image:       h.categoryImage(s.Image),
		}
	}
	return categoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Image:         h.categoryImage(c.Image),
		Subcategories: subs,
		CreatedAt:     c.CreatedAt,
	}
}

type cartLineJSON struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Lines     []cartLineJSON `json:"lines"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

func cartToResponse(c *cart.Cart) cartResponse {
	lines := make([]cartLineJSON, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineJSON{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	resp := cartResponse{Lines: lines}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = &c.UpdatedAt
	}
	return resp
}

type quoteLine struct {
	Product      productResponse `json:"product"`
	Quantity     int             `json:"quantity"`
	UnitPrice    float64         `json:"unitPrice"`
	FinalPrice   float64         `json:"finalPrice"`
	LineTotal    float64         `json:"lineTotal"`
	AppliedOffer *appliedOffer   `json:"appliedOffer,omitempty"`
}

type totalsResponse struct {
	Lines        []quoteLine   `json:"lines"`
	Subtotal     float64       `json:"subtotal"`
	Discounted   float64       `json:"discounted"`
	ItemSavings  float64       `json:"itemSavings"`
	CartOffer    *appliedOffer `json:"cartOffer,omitempty"`
	CartSavings  float64       `json:"cartSavings"`
	TotalSavings float64       `json:"totalSavings"`
	Total        float64       `json:"total"`
}

// totalsToResponse renders engine totals. products must be aligned with
// t.Lines.
func (h *Handler) totalsToResponse(products []product.Product, t offer.Totals) totalsResponse {
	lines := make([]quoteLine, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = quoteLine{
			Product:      h.productToResponse(products[i]),
			Quantity:     l.Quantity,
			UnitPrice:    l.Item.Price.InexactFloat64(),
			FinalPrice:   l.FinalPrice.InexactFloat64(),
			LineTotal:    l.LineTotal.InexactFloat64(),
			AppliedOffer: toApplied(l.AppliedOffer),
		}
	}
	return totalsResponse{
		Lines:        lines,
		Subtotal:     t.Base.InexactFloat64(),
		Discounted:   t.Discounted.InexactFloat64(),
		ItemSavings:  t.ItemSavings.InexactFloat64(),
		CartOffer:    toApplied(t.Cart.AppliedOffer),
		CartSavings:  t.Cart.Savings.InexactFloat64(),
		TotalSavings: t.TotalSavings().InexactFloat64(),
		Total:        t.Payable().InexactFloat64(),
	}
}

type shippingJSON struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderRequest struct {
	// Items may be omitted to order the stored cart.
	Items    []cartLineJSON `json:"items"`
	Shipping shippingJSON   `json:"shipping"`
}

type orderItemResponse struct {
	ProductID  string  `json:"productId"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	FinalPrice float64 `json:"finalPrice"`
	OfferID    string  `json:"offerId,omitempty"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	Items         []orderItemResponse `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	ItemSavings   float64             `json:"itemSavings"`
	CartOfferID   string              `json:"cartOfferId,omitempty"`
	CartSavings   float64             `json:"cartSavings"`
	Total         float64             `json:"total"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"paymentStatus"`
	Shipping      shippingJSON        `json:"shipping"`
	CreatedAt     time.Time           `json:"createdAt"`
	DeliveredAt   *time.Time          `json:"deliveredAt,omitempty"`
}

func orderToResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID:  it.ProductID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			FinalPrice: it.FinalPrice.InexactFloat64(),
			OfferID:    it.OfferID,
		}
	}
	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		Subtotal:      o.Subtotal.InexactFloat64(),
		ItemSavings:   o.ItemSavings.InexactFloat64(),
		CartOfferID:   o.CartOfferID,
		CartSavings:   o.CartSavings.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Shipping: shippingJSON{
			Name:    o.Shipping.Name,
			Surname: o.Shipping.Surname,
			Phone:   o.Shipping.Phone,
			Address: o.Shipping.Address,
		},
		CreatedAt:   o.CreatedAt,
		DeliveredAt: o.DeliveredAt,
	}
}

func ordersToResponse(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = orderToResponse(o)
	}
	return out
}

type statsResponse struct {
	Products     int       `json:"products"`
	Orders       int       `json:"orders"`
	Customers    int       `json:"customers"`
	RevenueToday float64   `json:"revenueToday"`
	RevenueWeek  float64   `json:"revenueWeek"`
	RevenueMonth float64   `json:"revenueMonth"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}

type feedbackResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func feedbackToResponse(f content.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

type slideRequest struct {
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
}

type slideResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
	Position int    `json:"position"`
}

func (h *Handler) slideToResponse(s content.Slide) slideResponse {
	return slideResponse{
		ID:       s.ID,
		ImageURL: h.imageURL(s.ImageURL),
		Link:     s.Link,
		Position: s.Position,
	}
}

type linkRequest struct {
	Logo string `json:"logo"`
	URL  string `json:"url"`
}

type linkResponse struct {
	ID       string `json:"id"`
	Logo     string `json:"logo"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

func (h *Handler) linkToResponse(l content.Link) linkResponse {
	return linkResponse{
		ID:       l.ID,
		Logo:     h.imageURL(l.Logo),
		URL:      l.URL,
		Position: l.Position,
	}
}

// reorderRequest lists ids in display order.
type reorderRequest struct {
	IDs []string `json:"ids"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
