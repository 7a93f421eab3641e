package restclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/prefs"
)

type ProductQuery struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PageSize int
}

type ProductPage struct {
	Data       []models.Product `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int64            `json:"total_pages"`
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}

	path := "/v1/products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page ProductPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) PriceRange(ctx context.Context, productID string) (pricing.PriceRange, error) {
	var r pricing.PriceRange
	err := c.do(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(productID)+"/price-range", nil, &r)
	return r, err
}

type QuoteLine struct {
	ProductID       string                  `json:"product_id"`
	Quantity        int                     `json:"quantity"`
	SelectedOptions pricing.OptionSelection `json:"selected_options"`
}

func (c *Client) Quote(ctx context.Context, lines []QuoteLine) (pricing.Quote, error) {
	var q pricing.Quote
	err := c.do(ctx, http.MethodPost, "/v1/cart/quote", map[string]any{"items": lines}, &q)
	return q, err
}

// Prefs es el prefs.Store remoto de una instalación de storectl
type Prefs struct {
	client *Client
}

var _ prefs.Store = (*Prefs)(nil)

func (c *Client) Prefs() *Prefs { return &Prefs{client: c} }

func (p *Prefs) Load(ctx context.Context, session string) (prefs.Preferences, error) {
	var out prefs.Preferences
	err := p.client.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(session)+"/prefs", nil, &out)
	return out, err
}

func (p *Prefs) Save(ctx context.Context, session string, in prefs.Preferences) error {
	return p.client.do(ctx, http.MethodPut, "/v1/sessions/"+url.PathEscape(session)+"/prefs", in, nil)
}
