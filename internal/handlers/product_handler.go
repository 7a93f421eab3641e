package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	listCacheTTL    = 2 * time.Minute
	productCacheTTL = 5 * time.Minute
)

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context, q repository.ListQuery) ([]*models.Product, int64, error)
	Update(ctx context.Context, id string, update bson.M) error
	SoftDelete(ctx context.Context, id string) error
}

type ProductHandler struct {
	repo  ProductStore
	cache *cache.Cache
}

func NewProductHandler(repo ProductStore, c *cache.Cache) *ProductHandler {
	return &ProductHandler{repo: repo, cache: c}
}

type ProductListResponse struct {
	Data       []*models.Product `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int64             `json:"total_pages"`
}

func productKey(id string) string { return "product:" + id }

// CreateProduct crea un nuevo producto
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if !bindJSON(c, &product) {
		return
	}
	if err := validateProduct(&product); err != nil {
		respondError(c, err, "failed to create product")
		return
	}

	if err := h.repo.Create(c.Request.Context(), &product); err != nil {
		respondError(c, err, "failed to create product")
		return
	}

	// Invalidar caché de listados
	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusCreated, product)
}

// GetProduct obtiene un producto por ID (con caché)
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	var cached models.Product
	if found, _ := h.cache.Unmarshal(productKey(id), &cached); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get product")
		return
	}

	_ = h.cache.Marshal(productKey(id), product, productCacheTTL)
	c.JSON(http.StatusOK, product)
}

// ListProducts lista productos con paginación y filtros (con caché)
func (h *ProductHandler) ListProducts(c *gin.Context) {
	q := repository.ListQuery{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", "created_at:desc"),
		Summary:  c.Query("summary") == "true",
	}
	q.Page, q.PageSize = paginationParams(c)

	cacheKey := fmt.Sprintf("products:list:p%d_s%d_q:%s_cat:%s_sort:%s_sum:%v",
		q.Page, q.PageSize, q.Search, q.Category, q.Sort, q.Summary)

	var cached ProductListResponse
	if found, _ := h.cache.Unmarshal(cacheKey, &cached); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := h.repo.FindAll(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "failed to list products")
		return
	}

	totalPages := total / int64(q.PageSize)
	if total%int64(q.PageSize) != 0 {
		totalPages++
	}
	resp := ProductListResponse{
		Data:       products,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}

	_ = h.cache.Marshal(cacheKey, resp, listCacheTTL)
	c.JSON(http.StatusOK, resp)
}

// UpdateProduct actualiza parcialmente un producto
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var update models.ProductUpdate
	if !bindJSON(c, &update) {
		return
	}
	if update.BasePrice != nil && update.BasePrice.IsNegative() {
		respondError(c, &ValidationError{Field: "base_price", Message: "price cannot be negative"}, "")
		return
	}
	if update.Stock != nil && *update.Stock < 0 {
		respondError(c, &ValidationError{Field: "stock", Message: "stock cannot be negative"}, "")
		return
	}

	fields := update.Fields()
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no valid fields to update"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), id, bson.M(fields)); err != nil {
		respondError(c, err, "failed to update product")
		return
	}

	h.invalidate(id)
	c.JSON(http.StatusOK, gin.H{"message": "product updated"})
}

// DeleteProduct realiza un borrado lógico
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to delete product")
		return
	}

	h.invalidate(id)
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (h *ProductHandler) invalidate(id string) {
	h.cache.Delete(productKey(id))
	h.cache.DeleteByPrefix("products:list:")
	InvalidatePriceRange(h.cache, id)
}

func paginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// validateProduct valida lo que las tags de binding no cubren
func validateProduct(p *models.Product) error {
	if p.BasePrice.IsNegative() {
		return &ValidationError{Field: "base_price", Message: "price cannot be negative"}
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "stock cannot be negative"}
	}
	return nil
}
