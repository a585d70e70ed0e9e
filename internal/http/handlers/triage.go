// Package handlers exposes the triage pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/triage-ai-platform/internal/intake"
	"github.com/wolfman30/triage-ai-platform/internal/pipeline"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// TriageHandler handles pipeline entry-point requests.
type TriageHandler struct {
	coordinator *pipeline.Coordinator
	logger      *logging.Logger
}

// NewTriageHandler creates the triage handler.
func NewTriageHandler(coordinator *pipeline.Coordinator, logger *logging.Logger) *TriageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TriageHandler{coordinator: coordinator, logger: logger}
}

// triageJSONRequest is the JSON request shape (no file uploads).
type triageJSONRequest struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Age        int      `json:"age"`
	Notes      string   `json:"notes"`
	Allergies  string   `json:"allergies"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	PostalCode string   `json:"postal_code"`
}

// Run handles POST /v1/triage. Accepts multipart/form-data (with optional
// image and report uploads) or application/json.
func (h *TriageHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		req, err = parseMultipartRequest(r)
	} else {
		req, err = parseJSONRequest(r)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.coordinator.Run(r.Context(), req)
	if err != nil {
		if pipeline.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("pipeline run failed", "error", err)
		http.Error(w, "triage pipeline failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func parseJSONRequest(r *http.Request) (pipeline.Request, error) {
	var body triageJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Name:       body.Name,
		Phone:      body.Phone,
		Age:        body.Age,
		Notes:      body.Notes,
		Allergies:  body.Allergies,
		Lat:        body.Lat,
		Lon:        body.Lon,
		PostalCode: body.PostalCode,
	}, nil
}

func parseMultipartRequest(r *http.Request) (pipeline.Request, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		Name:       r.FormValue("name"),
		Phone:      r.FormValue("phone"),
		Notes:      r.FormValue("notes"),
		Allergies:  r.FormValue("allergies"),
		PostalCode: r.FormValue("postal_code"),
	}

	if ageStr := r.FormValue("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Age = age
	}
	if latStr := r.FormValue("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Lat = &lat
	}
	if lonStr := r.FormValue("lon"); lonStr != "" {
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Lon = &lon
	}

	image, err := readUpload(r, "image")
	if err != nil {
		return pipeline.Request{}, err
	}
	req.Image = image

	report, err := readUpload(r, "report")
	if err != nil {
		return pipeline.Request{}, err
	}
	req.Report = report

	return req, nil
}

func readUpload(r *http.Request, field string) (*intake.Upload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := readAll(file)
	if err != nil {
		return nil, err
	}
	return &intake.Upload{Filename: header.Filename, Content: content}, nil
}

func readAll(file multipart.File) ([]byte, error) {
	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}
