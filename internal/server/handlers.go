package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
)

type itemErrorResponse struct {
	Error string `json:"error"`
	ID    int64  `json:"id"`
}

type diffResponse struct {
	Updated []int64             `json:"updated"`
	Added   []model.Record      `json:"added"`
	Errors  []itemErrorResponse `json:"errors"`
	Deleted int                 `json:"deleted"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Scan(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) clearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DropAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) applyDiff(w http.ResponseWriter, r *http.Request) {
	diff, err := model.DecodeDiff(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", errMalformed, err))
		return
	}

	result, err := h.diffs.ApplyDiff(r.Context(), diff)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := diffResponse{
		Updated: result.Updated,
		Added:   result.Added,
		Deleted: result.Deleted,
		Errors:  make([]itemErrorResponse, 0, len(result.Errors)),
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, itemErrorResponse{ID: e.ID, Error: e.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}

	result, err := h.imports.ImportReader(r.Context(), format, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inserted":   result.Inserted,
		"duplicates": result.Batch.Duplicates,
		"existing":   result.Batch.Existing,
		"predicted":  result.Predicted,
		"records":    result.Records,
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	flow, err := report.Summarize(r.Context(), h.ledger, q.Get("start"), q.Get("end"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// errMalformed marks request bodies that could not be decoded.
var errMalformed = errors.New("malformed request")
