package http

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"

	"finbook/internal/charts"
	"finbook/internal/core"
	"finbook/internal/report"
)

// chartKey fingerprints the chart input so identical data hits the cache
// instead of re-rendering the PNG.
func chartKey(kind string, v any) string {
	h := fnv.New64a()
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	h.Write(data)
	return fmt.Sprintf("%s:%x", kind, h.Sum64())
}

func (s *Server) handleBreakdownChart(w http.ResponseWriter, r *http.Request) {
	t := core.TransactionType(r.URL.Query().Get("type"))
	if t == "" {
		t = core.Expense
	}
	if !t.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be 'income' or 'expense'"})
		return
	}

	buckets := report.Breakdown(s.svc.Transactions(), t, s.opts.TopGroups)
	png, err := s.renderCached(chartKey("breakdown", buckets), func() ([]byte, error) {
		return charts.BreakdownDonut(string(t)+" breakdown", buckets)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if png == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no data to chart"})
		return
	}
	writePNG(w, png)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	points := report.MonthlyTrend(s.svc.Transactions(), s.opts.TrendMonths)
	png, err := s.renderCached(chartKey("trend", points), func() ([]byte, error) {
		return charts.TrendChart(points)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if png == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not enough data to chart"})
		return
	}
	writePNG(w, png)
}

func (s *Server) renderCached(key string, render func() ([]byte, error)) ([]byte, error) {
	if key != "" {
		if png, ok := s.chartCache.Get(key); ok {
			return png, nil
		}
	}
	png, err := render()
	if err != nil {
		return nil, err
	}
	if key != "" && png != nil {
		s.chartCache.Set(key, png)
	}
	return png, nil
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
