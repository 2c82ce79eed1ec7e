package handlers

import (
	"net/http"

	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/services"
)

const maxUploadSize = 10 << 20 // 10 MB

// UploadHandler accepts listing image uploads and stores them in Cloudinary.
type UploadHandler struct {
	cloudinary *services.CloudinaryService
}

func NewUploadHandler(cloudinary *services.CloudinaryService) *UploadHandler {
	return &UploadHandler{cloudinary: cloudinary}
}

// UploadImage accepts a multipart form with an "image" field and returns the
// hosted URL to embed in a listing.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.cloudinary == nil {
		respond.Error(w, http.StatusServiceUnavailable, "uploads unavailable",
			"image uploads are not configured on this server")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid upload",
			"expected a multipart form with an image up to 10MB")
		return
	}

	_, header, err := r.FormFile("image")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid upload",
			"an image file is required in the \"image\" field")
		return
	}

	url, err := h.cloudinary.UploadFileFromHeader(r.Context(), header, "listings")
	if err != nil {
		respond.Internal(w, "upload image", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "image uploaded successfully",
		"url":     url,
	})
}
