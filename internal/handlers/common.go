package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/fieldfix/internal/config"
	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
	"github.com/lehigh-university-libraries/fieldfix/internal/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

type Handler struct {
	cfg        *config.Config
	provider   reference.Provider
	cache      *storage.ReferenceCache
	normalizer *pipeline.Normalizer
	parser     *pubinfo.Parser
}

// New builds a Handler. provider may be nil, in which case the link
// endpoint reports that no reference source is configured.
func New(cfg *config.Config, provider reference.Provider) *Handler {
	parser := pubinfo.NewParser(cfg.PublicationVocabulary())
	return &Handler{
		cfg:        cfg,
		provider:   provider,
		cache:      storage.New(),
		normalizer: pipeline.NewNormalizer(parser, cfg.Splitter()),
		parser:     parser,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/normalize/", h.HandleNormalize)
	mux.HandleFunc("/api/link/", h.HandleLink)
	mux.HandleFunc("/api/vocabularies", h.HandleVocabularies)
	mux.HandleFunc("/api/vocabularies/", h.HandleVocabularyDetail)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// decodeBody reads a POST JSON body into v, writing the error response
// itself when it returns false.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}
