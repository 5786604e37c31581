package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"streetview-download/internal/downloads"
	"streetview-download/internal/streetview"
)

const requestTimeout = 120 * time.Second

// Config carries the server dependencies.
type Config struct {
	// Client fetches tiles and thumbnail views. Required.
	Client *streetview.Client

	// Cache is shared across requests. Optional.
	Cache downloads.TileCache

	// Batches is the per-download batch count. Zero means the default.
	Batches int

	// Version is reported by the health endpoint.
	Version string
}

// Server exposes the panorama pipeline over HTTP.
type Server struct {
	client    *streetview.Client
	cache     downloads.TileCache
	batches   int
	version   string
	startTime time.Time
}

// New creates a server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("server requires a client")
	}
	if cfg.Batches <= 0 {
		cfg.Batches = downloads.DefaultBatches
	}

	return &Server{
		client:    cfg.Client,
		cache:     cfg.Cache,
		batches:   cfg.Batches,
		version:   cfg.Version,
		startTime: time.Now(),
	}, nil
}

// Router builds the HTTP routes with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/panorama/{id}", s.handlePanorama)
		r.Get("/view", s.handleView)
		r.Get("/url", s.handleURL)
	})
	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int    `json:"uptime"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  int(time.Since(s.startTime).Seconds()),
	})
}

// handlePanorama downloads and assembles a full panorama. Query parameters:
// zoom (default 0), region as x0,y0,x1,y1 (default full grid), crop
// (default true) and format (jpeg or png, default jpeg). Cancelling the
// request cancels the download.
func (s *Server) handlePanorama(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()

	zoom := 0
	if v := query.Get("zoom"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "zoom must be an integer")
			return
		}
		zoom = z
	}

	settings, err := streetview.NewSettings(zoom)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if v := query.Get("region"); v != "" {
		settings, err = streetview.ParseRegion(zoom, v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	crop := true
	if v := query.Get("crop"); v != "" {
		crop, err = strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "crop must be a boolean")
			return
		}
	}

	format, ok := imageFormat(query.Get("format"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "format must be jpeg or png")
		return
	}

	downloader, err := downloads.NewDownloader(downloads.Config{
		Client:         s.client,
		Cache:          s.cache,
		Batches:        s.batches,
		CropBlackEdges: crop,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	img, err := downloader.Download(r.Context(), id, settings)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeImage(w, img, format)
}

// handleView fetches a rendered view through the thumbnail API. Query
// parameters: url (required), w and h (default 768x768), format.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	info, ok := s.parseURLParam(w, query.Get("url"))
	if !ok {
		return
	}

	width := streetview.DefaultViewWidth
	height := streetview.DefaultViewHeight
	if v := query.Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "w must be an integer")
			return
		}
		width = n
	}
	if v := query.Get("h"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "h must be an integer")
			return
		}
		height = n
	}

	format, ok := imageFormat(query.Get("format"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "format must be jpeg or png")
		return
	}

	img, err := s.client.FetchView(r.Context(), info, width, height)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeImage(w, img, format)
}

// handleURL parses a Street View share URL into its parameters.
func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	info, ok := s.parseURLParam(w, r.URL.Query().Get("url"))
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) parseURLParam(w http.ResponseWriter, rawURL string) (*streetview.URLInfo, bool) {
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "url query parameter is required")
		return nil, false
	}
	info, err := streetview.ParseURL(rawURL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, false
	}
	return info, true
}

func imageFormat(format string) (string, bool) {
	switch format {
	case "":
		return downloads.FormatJPEG, true
	case downloads.FormatJPEG, downloads.FormatPNG:
		return format, true
	default:
		return "", false
	}
}

// writePipelineError maps pipeline errors onto HTTP statuses: validation
// failures are 400, a panorama without imagery is 404, upstream fetch
// failures are 502.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, streetview.ErrInvalidPanoramaID),
		errors.Is(err, streetview.ErrInvalidZoom),
		errors.Is(err, streetview.ErrOutOfBounds),
		errors.Is(err, streetview.ErrInvalidRegion),
		errors.Is(err, streetview.ErrInvalidURL),
		errors.Is(err, streetview.ErrInvalidDimensions):
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, downloads.ErrNoPanoramaData):
		s.writeError(w, http.StatusNotFound, "NO_PANORAMA_DATA", "no imagery for this panorama")
	case errors.Is(err, context.Canceled):
		// Client went away, nothing to write.
	default:
		var statusErr *streetview.StatusError
		var urlErr *url.Error
		if errors.As(err, &statusErr) || errors.As(err, &urlErr) {
			s.writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
			return
		}
		log.Printf("[Server] download failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Server] failed to encode response: %v", err)
	}
}

func (s *Server) writeImage(w http.ResponseWriter, img image.Image, format string) {
	var buf bytes.Buffer
	if err := downloads.EncodeImage(&buf, img, format); err != nil {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to encode image")
		return
	}

	if format == downloads.FormatPNG {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/jpeg")
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[Server] failed to write image response: %v", err)
	}
}
