package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

const priceRangePrefix = "price-range:"

type OptionLister interface {
	List(ctx context.Context, owner string) ([]models.Option, error)
}

type PricingHandler struct {
	products ProductStore
	options  OptionLister
	cache    *cache.Cache
	ttl      time.Duration
}

func NewPricingHandler(products ProductStore, options OptionLister, c *cache.Cache, ttl time.Duration) *PricingHandler {
	return &PricingHandler{products: products, options: options, cache: c, ttl: ttl}
}

// InvalidatePriceRange se llama cuando cambia el producto o sus opciones
func InvalidatePriceRange(c *cache.Cache, productID string) {
	c.Delete(priceRangePrefix + productID)
}

// GetPriceRange GET /v1/products/:id/price-range
func (h *PricingHandler) GetPriceRange(c *gin.Context) {
	id := c.Param("id")
	key := priceRangePrefix + id

	var r pricing.PriceRange
	if found, _ := h.cache.Unmarshal(key, &r); found {
		c.JSON(http.StatusOK, r)
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get product")
		return
	}
	options, err := h.options.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to list options")
		return
	}

	r, err = pricing.Range(product.BasePrice.Decimal, options)
	if err != nil {
		respondError(c, err, "failed to compute price range")
		return
	}

	_ = h.cache.Marshal(key, r, h.ttl)
	c.JSON(http.StatusOK, r)
}

type QuoteItem struct {
	ProductID       string                  `json:"product_id" binding:"required"`
	Quantity        int                     `json:"quantity"`
	SelectedOptions pricing.OptionSelection `json:"selected_options"`
}

type QuoteRequest struct {
	Items []QuoteItem `json:"items" binding:"required,min=1,dive"`
}

// Quote POST /v1/cart/quote: precios unitarios, totales por línea y subtotal
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	lines := make([]pricing.Line, 0, len(req.Items))
	optionsByProduct := map[string][]models.Option{}

	for i, item := range req.Items {
		product, err := h.products.FindByID(ctx, item.ProductID)
		if err != nil {
			respondError(c, fmt.Errorf("line %d: %w", i, err), "failed to get product")
			return
		}

		options, ok := optionsByProduct[item.ProductID]
		if !ok {
			if options, err = h.options.List(ctx, item.ProductID); err != nil {
				respondError(c, err, "failed to list options")
				return
			}
			optionsByProduct[item.ProductID] = options
		}

		lines = append(lines, pricing.Line{
			BasePrice: product.BasePrice.Decimal,
			Options:   options,
			Selection: item.SelectedOptions,
			Quantity:  item.Quantity,
		})
	}

	quote, err := pricing.QuoteLines(lines)
	if err != nil {
		respondError(c, err, "failed to quote cart")
		return
	}
	c.JSON(http.StatusOK, quote)
}
