package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

type CollectionStore[T any] interface {
	List(ctx context.Context, owner string) ([]T, error)
	Create(ctx context.Context, owner string, item *T) error
	Update(ctx context.Context, owner, id string, item *T) (*T, error)
	Delete(ctx context.Context, owner, id string) error
	SetDefault(ctx context.Context, owner, id string) error
	Reorder(ctx context.Context, owner string, positions []models.Position) ([]T, error)
}

// CollectionHandler expone una colección ordenada por dueño:
//
//	GET    ""            lista por sort_order
//	POST   ""            agrega al final
//	PUT    "/reorder"    [{id, sort_order, is_default}]
//	PUT    "/:item_id"   reemplaza los campos editables
//	DELETE "/:item_id"   borra y compacta
//	PUT    "/:item_id/default"
type CollectionHandler[T any] struct {
	store CollectionStore[T]
	name  string

	// OwnerExists, si está, se chequea antes de cada operación
	OwnerExists func(ctx context.Context, owner string) error
	// OnChange se llama después de cada escritura exitosa
	OnChange func(owner string)
}

func NewCollectionHandler[T any](store CollectionStore[T], name string) *CollectionHandler[T] {
	return &CollectionHandler[T]{store: store, name: name}
}

// Register monta las rutas en el grupo; el dueño sale del parámetro :id
func (h *CollectionHandler[T]) Register(g *gin.RouterGroup, withDefault bool) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/reorder", h.Reorder)
	g.PUT("/:item_id", h.Update)
	g.DELETE("/:item_id", h.Delete)
	if withDefault {
		g.PUT("/:item_id/default", h.SetDefault)
	}
}

func (h *CollectionHandler[T]) owner(c *gin.Context) (string, bool) {
	owner := c.Param("id")
	if h.OwnerExists != nil {
		if err := h.OwnerExists(c.Request.Context(), owner); err != nil {
			respondError(c, err, "failed to load "+h.name+" owner")
			return "", false
		}
	}
	return owner, true
}

func (h *CollectionHandler[T]) changed(owner string) {
	if h.OnChange != nil {
		h.OnChange(owner)
	}
}

func (h *CollectionHandler[T]) List(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, "failed to list "+h.name)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CollectionHandler[T]) Create(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var item T
	if !bindJSON(c, &item) {
		return
	}
	if err := h.store.Create(c.Request.Context(), owner, &item); err != nil {
		respondError(c, err, "failed to create "+h.name)
		return
	}
	h.changed(owner)
	c.JSON(http.StatusCreated, item)
}

func (h *CollectionHandler[T]) Update(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var item T
	if !bindJSON(c, &item) {
		return
	}
	updated, err := h.store.Update(c.Request.Context(), owner, c.Param("item_id"), &item)
	if err != nil {
		respondError(c, err, "failed to update "+h.name)
		return
	}
	h.changed(owner)
	c.JSON(http.StatusOK, updated)
}

func (h *CollectionHandler[T]) Delete(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), owner, c.Param("item_id")); err != nil {
		respondError(c, err, "failed to delete "+h.name)
		return
	}
	h.changed(owner)
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler[T]) SetDefault(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.store.SetDefault(c.Request.Context(), owner, c.Param("item_id")); err != nil {
		respondError(c, err, "failed to set default "+h.name)
		return
	}
	h.changed(owner)
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler[T]) Reorder(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var positions []models.Position
	if !bindJSON(c, &positions) {
		return
	}
	items, err := h.store.Reorder(c.Request.Context(), owner, positions)
	if err != nil {
		respondError(c, err, "failed to reorder "+h.name)
		return
	}
	h.changed(owner)
	c.JSON(http.StatusOK, items)
}
