package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/log"
)

// HairstylesHandler serves the catalog gallery.
type HairstylesHandler struct {
	catalog catalog.Reader
}

func NewHairstylesHandler(store catalog.Reader) *HairstylesHandler {
	return &HairstylesHandler{catalog: store}
}

// GalleryResponse is one page of the gallery.
type GalleryResponse struct {
	Hairstyles []catalog.HairstyleAsset `json:"hairstyles"`
	Total      int                      `json:"total"`
	Offset     int                      `json:"offset"`
	Limit      int                      `json:"limit"`
}

// List handles GET /api/v1/hairstyles?gender=&limit=&offset=.
// A gender filter keeps unisex styles.
func (h *HairstylesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := constants.DefaultGalleryPageSize
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	offset := 0
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	assets, err := h.catalog.ListAll(r.Context())
	if err != nil {
		log.WithRequestID(r.Context()).WithError(err).Error("Listing hairstyles failed")
		respondError(w, http.StatusServiceUnavailable, "hairstyle catalog unavailable")
		return
	}

	if raw := query.Get("gender"); raw != "" {
		gender := catalog.ParseGender(raw)
		if gender == catalog.GenderUnknown {
			respondError(w, http.StatusBadRequest, "gender must be male, female or unisex")
			return
		}
		assets = catalog.FilterByGender(assets, gender)
	}

	total := len(assets)
	page := []catalog.HairstyleAsset{}
	if offset < total {
		page = assets[offset:min(offset+limit, total)]
	}

	respondJSON(w, http.StatusOK, GalleryResponse{
		Hairstyles: page,
		Total:      total,
		Offset:     offset,
		Limit:      limit,
	})
}

// Get handles GET /api/v1/hairstyles/{id}.
func (h *HairstylesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid hairstyle id")
		return
	}

	asset, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		log.WithRequestID(r.Context()).WithError(err).Error("Loading hairstyle failed")
		respondError(w, http.StatusServiceUnavailable, "hairstyle catalog unavailable")
		return
	}
	if asset == nil {
		respondError(w, http.StatusNotFound, "hairstyle not found")
		return
	}

	respondJSON(w, http.StatusOK, asset)
}
