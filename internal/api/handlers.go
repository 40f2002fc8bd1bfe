package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/layout"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/pipeline"
)

const (
	maxLayoutBody  = 1 << 20
	maxLayoutItems = 1000
)

// museumFormats are the formats GET /v1/museum serves, with their
// content types.
var museumFormats = map[string]string{
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatSVG:   "image/svg+xml",
	pipeline.FormatShare: "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMuseum builds a museum from the caller's listening history.
// Failed fetches do not fail the request; the categories that are missing
// are listed in the X-Museum-Partial header.
func (s *Server) handleMuseum(w http.ResponseWriter, r *http.Request) {
	opts, err := s.museumOptions(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), credentialFrom(r.Context()), opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if result.Partial() {
		missing := make([]string, len(result.Failures))
		for i, f := range result.Failures {
			missing[i] = string(f.Category)
		}
		w.Header().Set("X-Museum-Partial", strings.Join(missing, ","))
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", museumFormats[format])
	w.Header().Set("X-Museum-Seed", strconv.FormatUint(result.Museum.Seed, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) museumOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Logger = s.logger

	dims := []struct {
		name string
		dst  *float64
	}{{"width", &opts.Width}, {"height", &opts.Height}}
	for _, d := range dims {
		v := q.Get(d.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a number (got %q)", d.name, v)
		}
		if !(f > 0) || math.IsInf(f, 0) {
			return opts, errors.New(errors.ErrCodeInvalidCanvasSize, "%s must be positive and finite (got %v)", d.name, f)
		}
		*d.dst = f
	}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed must be an unsigned integer (got %q)", v)
		}
		opts.Seed = seed
	}
	if v := q.Get("time_range"); v != "" {
		opts.TimeRange = v
	}
	opts.Refresh = q.Get("refresh") == "true"

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if _, ok := museumFormats[format]; !ok {
		return opts, errors.New(errors.ErrCodeInvalidFormat, "format %q is not served here (want json, svg or share)", format)
	}
	opts.Formats = []string{format}
	return opts, nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.runner.Profile(r.Context(), credentialFrom(r.Context()))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Items   []museum.DisplayItem `json:"items"`
	Width   float64              `json:"width"`
	Height  float64              `json:"height"`
	Options layout.Options       `json:"options"`
}

// LayoutResponse is the reply of POST /v1/layout.
type LayoutResponse struct {
	Placements []museum.Placement `json:"placements"`
	Seed       uint64             `json:"seed"`
	Rows       int                `json:"rows"`
	Cols       int                `json:"cols"`
	Fallbacks  int                `json:"fallbacks"`
}

// handleLayout runs the layout engine on caller-supplied items. Unlike
// /v1/museum a zero canvas dimension is rejected rather than defaulted.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLayoutBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout request"))
		return
	}
	if len(req.Items) > maxLayoutItems {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "too many items (max %d)", maxLayoutItems))
		return
	}
	for i, item := range req.Items {
		if item.ImageURL == "" {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "items[%d] has no image_url", i))
			return
		}
		if !item.Category.Valid() {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "items[%d] has unknown category %q", i, item.Category))
			return
		}
	}

	res, err := layout.Compute(req.Items, req.Width, req.Height, req.Options)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Placements: res.Placements,
		Seed:       res.Seed,
		Rows:       res.Rows,
		Cols:       res.Cols,
		Fallbacks:  res.Fallbacks,
	})
}
