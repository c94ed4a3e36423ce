package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/recommend"
)

// testLandmarks is an index-keyed detector payload for a plausible face on a square image.
func testLandmarks(width, height int) string {
	points := map[string]map[string]float64{
		"10":  {"x": 0.5, "y": 0.2},
		"13":  {"x": 0.5, "y": 0.78},
		"14":  {"x": 0.5, "y": 0.8},
		"33":  {"x": 0.35, "y": 0.4},
		"58":  {"x": 0.3, "y": 0.75},
		"61":  {"x": 0.42, "y": 0.79},
		"103": {"x": 0.3, "y": 0.3},
		"109": {"x": 0.4, "y": 0.22},
		"152": {"x": 0.5, "y": 0.9},
		"234": {"x": 0.2, "y": 0.5},
		"263": {"x": 0.65, "y": 0.4},
		"288": {"x": 0.7, "y": 0.75},
		"291": {"x": 0.58, "y": 0.79},
		"332": {"x": 0.7, "y": 0.3},
		"338": {"x": 0.6, "y": 0.22},
		"454": {"x": 0.8, "y": 0.5},
	}
	payload := map[string]any{"landmarks": points}
	if width > 0 {
		payload["imageWidth"] = width
		payload["imageHeight"] = height
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// testPNG encodes a solid grey image.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a POST with an optional image part and form fields.
func multipartRequest(t *testing.T, path string, imageData []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if imageData != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write(imageData)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// fakeRecommender returns a fixed result and remembers the last request.
type fakeRecommender struct {
	mu       sync.Mutex
	result   recommend.Result
	last     *recommend.Request
	onSelect func(ctx context.Context)
}

func (f *fakeRecommender) Select(ctx context.Context, req *recommend.Request) recommend.Result {
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.onSelect != nil {
		f.onSelect(ctx)
	}
	return f.result
}

func testResult() recommend.Result {
	return recommend.Result{
		Recommendations: []recommend.Recommendation{
			{
				Asset: catalog.HairstyleAsset{
					ID:             4,
					Name:           "Long Layers",
					Gender:         catalog.GenderFemale,
					Tags:           []string{"long"},
					FaceShapeMatch: []string{"oval"},
					ImageURL:       "https://cdn.test/layers.png",
				},
				Explanation: "Softens the jawline.",
			},
		},
		FaceShape:          "Oval",
		Gender:             catalog.GenderFemale,
		Source:             recommend.SourceAI,
		ClothingSuggestion: "Soft colors.",
		OutfitSuggestions:  recommend.DefaultOutfits(),
	}
}
