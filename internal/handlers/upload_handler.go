package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/storage"
)

const maxUploadSize = 10 << 20

type UploadHandler struct {
	storage storage.Storage
}

func NewUploadHandler(s storage.Storage) *UploadHandler {
	return &UploadHandler{storage: s}
}

// Upload POST /v1/uploads (multipart, campo "file"). Devuelve {key, url};
// la fila de media se crea después por la colección de media del producto.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}
	defer f.Close()

	res, err := h.storage.Put(c.Request.Context(), f, storage.PutInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		respondError(c, err, "failed to store upload")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DeleteUpload DELETE /v1/uploads/*key
func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "key is required"})
		return
	}
	if err := h.storage.Delete(c.Request.Context(), key); err != nil {
		respondError(c, err, "failed to delete upload")
		return
	}
	c.Status(http.StatusNoContent)
}
