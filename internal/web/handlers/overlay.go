package handlers

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/log"
	"github.com/kozaktomas/style-genie/internal/overlay"
	"github.com/kozaktomas/style-genie/internal/session"
)

// OverlayNoticeHeader carries the notice when the hairstyle was not drawn.
const OverlayNoticeHeader = "X-Overlay-Notice"

// OverlayHandler renders try-on previews.
type OverlayHandler struct {
	catalog     catalog.Reader
	loader      overlay.AssetLoader
	sessions    *session.Tracker
	assetPrefix string
}

// NewOverlayHandler creates the handler. asset_url values are accepted only
// below assetPrefix or when they name a catalog image.
func NewOverlayHandler(store catalog.Reader, loader overlay.AssetLoader, sessions *session.Tracker, assetPrefix string) *OverlayHandler {
	return &OverlayHandler{catalog: store, loader: loader, sessions: sessions, assetPrefix: assetPrefix}
}

// AdjustmentsResponse describes the adjustment controls.
type AdjustmentsResponse struct {
	Defaults overlay.Adjustments `json:"defaults"`
	Sliders  []overlay.Slider    `json:"sliders"`
}

// Adjustments handles GET /api/v1/adjustments.
func (h *OverlayHandler) Adjustments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AdjustmentsResponse{
		Defaults: overlay.DefaultAdjustments(),
		Sliders:  overlay.Sliders(),
	})
}

// Render handles POST /api/v1/overlay and answers with a PNG.
func (h *OverlayHandler) Render(w http.ResponseWriter, r *http.Request) {
	form, err := parsePhotoForm(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	if err := form.Frame.Validate(); err != nil {
		respondRequestError(w, r, err)
		return
	}

	adj, err := parseAdjustments(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := h.assetRef(r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}

	base, err := overlay.DecodeImage(bytes.NewReader(form.ImageData), "upload")
	if err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	composite, err := overlay.Render(r.Context(), base, h.loader, ref, overlay.Input{
		Landmarks:   form.Frame.Landmarks,
		ImageWidth:  form.Frame.ImageWidth,
		ImageHeight: form.Frame.ImageHeight,
		Adjustments: adj,
		ForeheadBox: form.Frame.Box(),
	})
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if form.SessionID != "" {
		h.sessions.Update(form.SessionID, func(s session.State, now time.Time) session.State {
			return s.Adjust(adj, now)
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, composite.Image); err != nil {
		log.WithRequestID(r.Context()).WithError(err).Error("Encoding preview failed")
		respondError(w, http.StatusInternalServerError, "failed to encode preview")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if composite.Notice != "" {
		w.Header().Set(OverlayNoticeHeader, composite.Notice)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// assetRef resolves asset_id through the catalog, or falls back to a known asset_url.
func (h *OverlayHandler) assetRef(r *http.Request) (string, error) {
	if raw := strings.TrimSpace(r.FormValue("asset_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", invalidInput(http.StatusBadRequest, "invalid asset_id")
		}
		if id == catalog.UniversalFallbackID {
			return catalog.UniversalFallback().ImageURL, nil
		}
		asset, err := h.catalog.Get(r.Context(), id)
		if err != nil {
			return "", fmt.Errorf("loading asset %d: %w", id, err)
		}
		if asset == nil {
			return "", invalidInput(http.StatusNotFound, "hairstyle not found")
		}
		return asset.ImageURL, nil
	}

	if url := strings.TrimSpace(r.FormValue("asset_url")); url != "" {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return "", invalidInput(http.StatusBadRequest, "asset_url must be an http(s) URL")
		}
		known, err := h.knownAssetURL(r, url)
		if err != nil {
			return "", err
		}
		if !known {
			return "", invalidInput(http.StatusBadRequest, "asset_url is not a catalog image")
		}
		return url, nil
	}

	return "", invalidInput(http.StatusBadRequest, "asset_id or asset_url is required")
}

// knownAssetURL reports whether url points into the asset bucket or at a catalog image.
// Nothing else is fetched server-side.
func (h *OverlayHandler) knownAssetURL(r *http.Request, url string) (bool, error) {
	if url == catalog.UniversalFallback().ImageURL {
		return true, nil
	}
	if h.assetPrefix != "" && strings.HasPrefix(url, h.assetPrefix) {
		return true, nil
	}
	assets, err := h.catalog.ListAll(r.Context())
	if err != nil {
		return false, fmt.Errorf("listing catalog: %w", err)
	}
	for _, a := range assets {
		if a.ImageURL == url {
			return true, nil
		}
	}
	return false, nil
}

// parseAdjustments reads scale, x, y and rotation form fields; missing ones keep their defaults.
func parseAdjustments(r *http.Request) (overlay.Adjustments, error) {
	adj := overlay.DefaultAdjustments()
	fields := []struct {
		name string
		dst  *float64
	}{
		{"scale", &adj.ScaleMultiplier},
		{"x", &adj.OffsetX},
		{"y", &adj.OffsetY},
		{"rotation", &adj.RotationDegrees},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(r.FormValue(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return adj, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = v
	}
	if err := adj.Validate(); err != nil {
		return adj, fmt.Errorf("adjustments out of range: %w", err)
	}
	return adj, nil
}
