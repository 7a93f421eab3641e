package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/prefs"
)

type PrefsHandler struct {
	store prefs.Store
}

func NewPrefsHandler(s prefs.Store) *PrefsHandler {
	return &PrefsHandler{store: s}
}

func (h *PrefsHandler) Get(c *gin.Context) {
	p, err := h.store.Load(c.Request.Context(), c.Param("sid"))
	if errors.Is(err, prefs.ErrInvalidSession) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		respondError(c, err, "failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PrefsHandler) Put(c *gin.Context) {
	var p prefs.Preferences
	if !bindJSON(c, &p) {
		return
	}
	p = p.Normalize()
	err := h.store.Save(c.Request.Context(), c.Param("sid"), p)
	if errors.Is(err, prefs.ErrInvalidSession) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		respondError(c, err, "failed to save preferences")
		return
	}
	c.JSON(http.StatusOK, p)
}
