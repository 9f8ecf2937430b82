package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

// LinkRequest carries raw pairs to check against a vocabulary.
type LinkRequest struct {
	Pairs       []linker.Pair `json:"pairs"`
	ShowSkipped bool          `json:"show_skipped,omitempty"`
}

// VocabularyInfo describes a configured vocabulary.
type VocabularyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cached      bool   `json:"cached"`
	References  int    `json:"references"`
}

func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/link/"), "/")

	vocab, err := h.cfg.Vocabulary(name)
	if err != nil {
		if errors.Is(err, reference.ErrUnknownVocabulary) {
			h.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var req LinkRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if h.provider == nil {
		h.writeError(w, "No reference source configured", http.StatusServiceUnavailable)
		return
	}

	ref, err := h.cache.GetOrLoad(r.Context(), h.provider, vocab)
	if err != nil {
		slog.Error("Failed to load reference map", "vocabulary", vocab.Name, "err", err)
		h.writeError(w, "Failed to load reference map", http.StatusBadGateway)
		return
	}

	pairs := pipeline.PreparePairs(vocab, req.Pairs)
	h.writeJSON(w, pipeline.Linker(vocab, req.ShowSkipped).Filter(pairs, ref))
}

func (h *Handler) HandleVocabularies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sizes := h.cache.Sizes()
	names := h.cfg.VocabularyNames()
	list := make([]VocabularyInfo, 0, len(names))
	for _, name := range names {
		size, cached := sizes[name]
		list = append(list, VocabularyInfo{
			Name:        name,
			Description: h.cfg.Vocabularies[name].Description,
			Cached:      cached,
			References:  size,
		})
	}
	h.writeJSON(w, list)
}

// HandleVocabularyDetail drops a cached reference map on DELETE so the next
// link request reloads it from the source.
func (h *Handler) HandleVocabularyDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/vocabularies/"), "/")

	switch r.Method {
	case http.MethodDelete:
		if _, err := h.cfg.Vocabulary(name); err != nil {
			h.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		if h.cache.Delete(name) {
			slog.Info("Reference map evicted", "vocabulary", name)
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
