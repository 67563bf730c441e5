// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	A *app.ApprovalService
}

type envelope struct {
	Status string   `json:"status"` // success|error
	Result any      `json:"result,omitempty"`
	Error  *problem `json:"error,omitempty"`
}

type problem struct {
	Title  string `json:"title"`
	Code   int    `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/reviews", h.listReviews)
		r.Get("/reviews/stats", h.stats)
		r.Get("/reviews/approved", h.approved)
		r.Post("/reviews/approval", h.setApprovalBulk)
		r.Put("/reviews/{id}/approval", h.setApproval)
		r.Get("/listings", h.listings)
		r.Get("/listings/{id}/public", h.publicReviews)
		r.Post("/cache/invalidate", h.invalidate)
	})
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Status: "error", Error: &problem{Title: title, Code: status, Detail: detail}}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "Invalid query", ve.Error())
	case errors.Is(err, domain.ErrNoSources):
		writeError(w, http.StatusServiceUnavailable, "No sources", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeOK(w http.ResponseWriter, r *http.Request, result any) {
	etag, body := calcETagAndBody(envelope{Status: "success", Result: result})
	if body == nil {
		writeError(w, http.StatusInternalServerError, "Internal Error", "encode failed")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	f, pg, err := app.ParseFilters(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.Q.ListReviews(r.Context(), f, pg)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, out)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	f, _, err := app.ParseFilters(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.Q.Stats(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, out)
}

func (h *Handlers) listings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Listings(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, out)
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Invalid ID", "listing id is required")
		return
	}
	out, err := h.Q.PublicReviews(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, out)
}

func (h *Handlers) approved(w http.ResponseWriter, r *http.Request) {
	set := h.A.AllApproved()
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	writeOK(w, r, map[string]any{"ids": ids, "unsynced": len(h.A.Unsynced())})
}

type approvalBody struct {
	IDs      []string `json:"ids,omitempty"`
	Approved *bool    `json:"approved"`
}

func decodeApproval(w http.ResponseWriter, r *http.Request) (approvalBody, bool) {
	var b approvalBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return b, false
	}
	if b.Approved == nil {
		writeError(w, http.StatusBadRequest, "Invalid body", "approved is required")
		return b, false
	}
	return b, true
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := decodeApproval(w, r)
	if !ok {
		return
	}
	if err := h.A.SetApproved(r.Context(), id, *b.Approved); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, map[string]any{"id": id, "isApprovedForWebsite": *b.Approved})
}

func (h *Handlers) setApprovalBulk(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeApproval(w, r)
	if !ok {
		return
	}
	if len(b.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid body", "ids must not be empty")
		return
	}
	if err := h.A.SetMany(r.Context(), b.IDs, *b.Approved); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, r, map[string]any{"updated": len(b.IDs), "isApprovedForWebsite": *b.Approved})
}

func (h *Handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	listing := r.URL.Query().Get("listingId")
	if err := h.Q.Invalidate(r.Context(), listing); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
