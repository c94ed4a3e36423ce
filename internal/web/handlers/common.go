package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/facematch"
	"github.com/kozaktomas/style-genie/internal/landmark"
	"github.com/kozaktomas/style-genie/internal/log"
)

const (
	errInvalidRequestBody = "invalid request body"
	errNoFaceDetected     = "No face detected, please upload a clearer photo"
)

// InvalidInputError is a client mistake in an upload.
type InvalidInputError struct {
	Status  int
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func invalidInput(status int, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondRequestError maps upload and landmark failures to a status code.
func respondRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *InvalidInputError
	var missingErr *landmark.MissingLandmarkError
	var topologyErr *landmark.TopologyError

	switch {
	case errors.As(err, &inputErr):
		respondError(w, inputErr.Status, inputErr.Message)
	case errors.Is(err, landmark.ErrNoFaceDetected):
		respondError(w, http.StatusUnprocessableEntity, errNoFaceDetected)
	case errors.As(err, &missingErr), errors.As(err, &topologyErr), errors.Is(err, facematch.ErrDegenerateFace):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.WithRequestID(r.Context()).WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// photoForm is a parsed multipart upload of a photo and its detector output.
type photoForm struct {
	ImageData []byte
	MIMEType  string
	Frame     *landmark.Frame
	SessionID string
}

// parsePhotoForm reads the "image" file and "landmarks" field. Missing
// landmarks are a missing face, not a bad request.
func parsePhotoForm(w http.ResponseWriter, r *http.Request) (*photoForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxMultipartMemory)
	if err := r.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, invalidInput(http.StatusBadRequest, "image must be at most %d MB", constants.MaxUploadSize>>20)
		}
		return nil, invalidInput(http.StatusBadRequest, "failed to parse multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, invalidInput(http.StatusBadRequest, "image file is required")
	}
	defer file.Close()

	if header.Size > constants.MaxUploadSize {
		return nil, invalidInput(http.StatusBadRequest, "image must be at most %d MB", constants.MaxUploadSize>>20)
	}

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize+1))
	if err != nil {
		return nil, invalidInput(http.StatusBadRequest, "failed to read image")
	}
	if len(data) > constants.MaxUploadSize {
		return nil, invalidInput(http.StatusBadRequest, "image must be at most %d MB", constants.MaxUploadSize>>20)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, invalidInput(http.StatusBadRequest, "file must be an image, got %s", mimeType)
	}

	form := &photoForm{
		ImageData: data,
		MIMEType:  mimeType,
		SessionID: strings.TrimSpace(r.FormValue("session_id")),
	}

	frame, err := landmark.DecodeFrame(strings.NewReader(r.FormValue("landmarks")))
	if err != nil {
		if errors.Is(err, landmark.ErrNoFaceDetected) {
			return nil, err
		}
		return nil, invalidInput(http.StatusBadRequest, "invalid landmarks: %v", err)
	}

	// Detectors may omit dimensions; they are the photo's own.
	if frame.ImageWidth == 0 || frame.ImageHeight == 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, invalidInput(http.StatusBadRequest, "unsupported image format")
		}
		frame.ImageWidth, frame.ImageHeight = cfg.Width, cfg.Height
	}
	form.Frame = frame

	return form, nil
}
