package handlers

import (
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/fieldfix/internal/author"
	"github.com/lehigh-university-libraries/fieldfix/internal/bbk"
	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/grnti"
)

// TextRequest carries a single raw field value.
type TextRequest struct {
	Text string `json:"text"`
}

// BBKRequest carries either tagged fields or a single content string.
type BBKRequest struct {
	Text   string      `json:"text,omitempty"`
	Fields []bbk.Field `json:"fields,omitempty"`
}

// ValueResponse wraps a single normalized value.
type ValueResponse struct {
	Result string `json:"result"`
}

// ListResponse wraps a list of normalized values.
type ListResponse struct {
	Results []string `json:"results"`
}

func (h *Handler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	kind := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/normalize/"), "/")

	switch kind {
	case "author", "author-field", "grnti":
		var req TextRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		var result string
		switch kind {
		case "author":
			result = author.Normalize(req.Text)
		case "author-field":
			result = author.ParseField(req.Text)
		default:
			result = grnti.Normalize(strings.TrimSpace(req.Text))
		}
		h.writeJSON(w, ValueResponse{Result: result})
	case "authors":
		var req TextRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		h.writeJSON(w, ListResponse{Results: nonNil(author.Split(req.Text))})
	case "pubinfo":
		var req TextRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		h.writeJSON(w, h.parser.Parse(req.Text))
	case "bbk":
		var req BBKRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		splitter := h.cfg.Splitter()
		var labels []string
		if len(req.Fields) > 0 {
			labels = splitter.Collect(req.Fields)
		} else {
			labels = splitter.Split(req.Text)
		}
		h.writeJSON(w, ListResponse{Results: nonNil(labels)})
	case "record":
		var rec dataset.Record
		if !h.decodeBody(w, r, &rec) {
			return
		}
		h.writeJSON(w, h.normalizer.Normalize(rec))
	default:
		h.writeError(w, "Unknown normalizer: "+kind, http.StatusNotFound)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
