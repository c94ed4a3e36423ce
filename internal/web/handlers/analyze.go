package handlers

import (
	"context"
	"net/http"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/facematch"
	"github.com/kozaktomas/style-genie/internal/log"
	"github.com/kozaktomas/style-genie/internal/recommend"
	"github.com/kozaktomas/style-genie/internal/session"
)

// Recommender picks hairstyles for an analyzed face.
type Recommender interface {
	Select(ctx context.Context, req *recommend.Request) recommend.Result
}

// AnalyzeHandler runs classification and recommendation for an uploaded photo.
type AnalyzeHandler struct {
	recommender Recommender
	sessions    *session.Tracker
}

func NewAnalyzeHandler(recommender Recommender, sessions *session.Tracker) *AnalyzeHandler {
	return &AnalyzeHandler{recommender: recommender, sessions: sessions}
}

// RecommendationResponse is one hairstyle in an analysis response.
type RecommendationResponse struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Gender         catalog.Gender `json:"gender"`
	Tags           []string       `json:"tags"`
	FaceShapeMatch []string       `json:"faceShapeMatch"`
	ImageURL       string         `json:"imageUrl"`
	Description    string         `json:"description,omitempty"`
	Explanation    string         `json:"explanation"`
}

// AnalyzeResponse is the body of POST /analyze.
type AnalyzeResponse struct {
	SessionID          string                   `json:"sessionId"`
	Recommendations    []RecommendationResponse `json:"recommendations"`
	FaceShape          string                   `json:"faceShape"`
	Gender             catalog.Gender           `json:"gender"`
	Source             recommend.Source         `json:"source"`
	ClothingSuggestion string                   `json:"clothingSuggestion"`
	OutfitSuggestions  []ai.OutfitSuggestion    `json:"outfitSuggestions"`
	Geometry           facematch.FaceGeometry   `json:"geometry"`
	LandmarkGender     facematch.GenderEstimate `json:"landmarkGender"`
	Notice             string                   `json:"notice,omitempty"`
	Warnings           []string                 `json:"warnings,omitempty"`
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	form, err := parsePhotoForm(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}

	analysis, err := facematch.AnalyzeFrame(form.Frame)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}

	ticket := h.sessions.Begin(r.Context(), form.SessionID)
	result := h.recommender.Select(ticket.Context(), &recommend.Request{
		ImageData: form.ImageData,
		Geometry:  &analysis.Geometry,
	})

	if !h.sessions.Commit(ticket) {
		log.WithRequestID(r.Context()).WithField("session", sanitizeForLog(ticket.SessionID)).Info("Analysis superseded, dropping result")
		respondError(w, http.StatusConflict, "analysis was superseded by a newer request")
		return
	}

	respondJSON(w, http.StatusOK, newAnalyzeResponse(ticket.SessionID, result, analysis))
}

func newAnalyzeResponse(sessionID string, result recommend.Result, analysis facematch.AnalysisResult) AnalyzeResponse {
	recs := make([]RecommendationResponse, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		recs[i] = RecommendationResponse{
			ID:             rec.Asset.ID,
			Name:           rec.Asset.Name,
			Gender:         rec.Asset.Gender,
			Tags:           rec.Asset.Tags,
			FaceShapeMatch: rec.Asset.FaceShapeMatch,
			ImageURL:       rec.Asset.ImageURL,
			Description:    rec.Asset.Description,
			Explanation:    rec.Explanation,
		}
	}

	return AnalyzeResponse{
		SessionID:          sessionID,
		Recommendations:    recs,
		FaceShape:          result.FaceShape,
		Gender:             result.Gender,
		Source:             result.Source,
		ClothingSuggestion: result.ClothingSuggestion,
		OutfitSuggestions:  result.OutfitSuggestions,
		Geometry:           analysis.Geometry,
		LandmarkGender:     analysis.Gender,
		Notice:             result.Notice,
		Warnings:           result.Warnings,
	}
}
