package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/cache"
	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/prefs"
	"storefront/internal/storage"
)

// Deps son las dependencias ya construidas que necesitan los handlers
type Deps struct {
	Products  handlers.ProductStore
	Addresses handlers.CollectionStore[models.Address]
	Media     handlers.CollectionStore[models.Media]
	Options   handlers.CollectionStore[models.Option]
	Cache     *cache.Cache
	Prefs     prefs.Store
	Storage   storage.Storage

	PriceRangeTTL time.Duration
}

func RegisterRoutes(router *gin.Engine, d Deps) {
	products := handlers.NewProductHandler(d.Products, d.Cache)
	pricing := handlers.NewPricingHandler(d.Products, d.Options, d.Cache, d.PriceRangeTTL)
	uploads := handlers.NewUploadHandler(d.Storage)
	prefsHandler := handlers.NewPrefsHandler(d.Prefs)

	productExists := func(ctx context.Context, id string) error {
		_, err := d.Products.FindByID(ctx, id)
		return err
	}

	addresses := handlers.NewCollectionHandler(d.Addresses, "addresses")

	media := handlers.NewCollectionHandler(d.Media, "media")
	media.OwnerExists = productExists

	options := handlers.NewCollectionHandler(d.Options, "options")
	options.OwnerExists = productExists
	options.OnChange = func(productID string) { handlers.InvalidatePriceRange(d.Cache, productID) }

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/products", products.CreateProduct)
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/:id", products.GetProduct)
		v1.PATCH("/products/:id", products.UpdateProduct)
		v1.DELETE("/products/:id", products.DeleteProduct)
		v1.GET("/products/:id/price-range", pricing.GetPriceRange)

		media.Register(v1.Group("/products/:id/media"), false)
		options.Register(v1.Group("/products/:id/options"), false)
		addresses.Register(v1.Group("/users/:id/addresses"), true)

		v1.POST("/cart/quote", pricing.Quote)

		v1.POST("/uploads", uploads.Upload)
		v1.DELETE("/uploads/*key", uploads.DeleteUpload)

		v1.GET("/sessions/:sid/prefs", prefsHandler.Get)
		v1.PUT("/sessions/:sid/prefs", prefsHandler.Put)
	}
}
