// Package handler exposes the search service HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/query"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/querylog"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher/cache"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/config"
	apperrors "github.com/AlirezaFarnia/PsyNeuLink/pkg/errors"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/logger"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/metrics"
)

// ResultCache is the slice of the query cache the handler needs.
// *cache.QueryCache satisfies it; a nil ResultCache disables caching.
type ResultCache interface {
	GetOrCompute(ctx context.Context, key string, compute func() (*searcher.Result, error)) (*searcher.Result, bool, error)
	Stats() (hits, misses int64)
	Invalidate(ctx context.Context) error
}

// Handler serves search queries over the current snapshot.
type Handler struct {
	holder    *searcher.Holder
	cache     ResultCache
	collector *querylog.Collector
	metrics   *metrics.Metrics
	cfg       config.SearchConfig
	logger    *slog.Logger
}

// New creates a Handler. cache and collector may be nil.
func New(holder *searcher.Holder, rc ResultCache, collector *querylog.Collector, m *metrics.Metrics, cfg config.SearchConfig, log *slog.Logger) *Handler {
	return &Handler{
		holder:    holder,
		cache:     rc,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    log,
	}
}

// Search handles GET /api/v1/search?q=...&limit=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	rawQuery := strings.TrimSpace(r.URL.Query().Get("q"))
	if rawQuery == "" {
		h.metrics.SearchQueriesTotal.WithLabelValues("rejected").Inc()
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter q is required"))
		return
	}

	limit := h.cfg.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.metrics.SearchQueriesTotal.WithLabelValues("rejected").Inc()
			h.writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer, got %q", v))
			return
		}
		if n > h.cfg.MaxResults {
			n = h.cfg.MaxResults
		}
		limit = n
	}

	snap := h.holder.Load()
	if snap == nil {
		h.metrics.SearchQueriesTotal.WithLabelValues("rejected").Inc()
		h.writeError(w, r, apperrors.New(apperrors.ErrIndexUnavailable, http.StatusServiceUnavailable, "no index snapshot loaded"))
		return
	}

	terms := tokenizer.Terms(rawQuery, snap.TokenizerConfig())
	compute := func() (*searcher.Result, error) {
		return h.execute(rawQuery, limit, snap), nil
	}

	var (
		result   *searcher.Result
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		key := cache.Key(snap.Stamp(), strings.Join(terms, " "), limit)
		result, cacheHit, err = h.cache.GetOrCompute(r.Context(), key, compute)
		if err != nil {
			h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
			h.writeError(w, r, err)
			return
		}
	} else {
		result, _ = compute()
	}

	elapsed := time.Since(started)
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	outcome := "ok"
	if result.TotalHits == 0 {
		outcome = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(result.TotalHits))

	if h.collector != nil {
		h.collector.Track(querylog.Event{
			RequestID: logger.RequestID(r.Context()),
			Query:     rawQuery,
			Terms:     terms,
			Hits:      result.TotalHits,
			LatencyMS: float64(elapsed.Microseconds()) / 1000.0,
			CacheHit:  cacheHit,
			Stamp:     snap.Stamp(),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// execute runs the engine and trims the envelope to limit.
func (h *Handler) execute(rawQuery string, limit int, snap *index.Snapshot) *searcher.Result {
	scored := query.Search(rawQuery, snap)
	total := len(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return &searcher.Result{
		Query:     rawQuery,
		Stamp:     snap.Stamp(),
		TotalHits: total,
		Results:   scored,
	}
}

// Stats handles GET /api/v1/index/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.holder.Load()
	if snap == nil {
		h.writeError(w, r, apperrors.New(apperrors.ErrIndexUnavailable, http.StatusServiceUnavailable, "no index snapshot loaded"))
		return
	}
	stats := map[string]any{
		"stamp":   snap.Stamp(),
		"docs":    snap.DocCount(),
		"objects": snap.ObjectCount(),
		"terms":   snap.TermCount(),
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		stats["cache"] = map[string]int64{"hits": hits, "misses": misses}
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// InvalidateCache handles POST /api/v1/cache/invalidate.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, r, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusServiceUnavailable, "query cache not configured"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	h.writeJSON(w, status, map[string]string{
		"error":      http.StatusText(status),
		"message":    err.Error(),
		"request_id": logger.RequestID(r.Context()),
	})
}
