package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/helpers"
	"github.com/spektr-org/podes/render"
	"github.com/spektr-org/podes/schema"
	"github.com/spektr-org/podes/source"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// apiResponse is the common JSON body.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// ============================================================================
// REQUEST HELPERS
// ============================================================================

// listParam collects a query parameter given repeatedly or as a comma list.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// loadView fetches the rows and applies the kecamatan filter. On failure it
// has already written a 502.
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) (engine.RecordView, bool) {
	rows, err := s.src.Villages(r.Context())
	if err != nil {
		s.logger.Error("Failed to load villages",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "village source unavailable")
		return nil, false
	}
	view := engine.NewSliceView(rows)
	return engine.ApplyFilters(view, engine.KecamatanFilter(listParam(r, "kecamatan")...)), true
}

// reportFor runs the indicator executor for the {key} path variable.
func (s *Server) reportFor(w http.ResponseWriter, r *http.Request) (*engine.Result, bool) {
	normalize, err := boolParam(r, "normalize_empty")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	top, err := intParam(r, "top")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	view, ok := s.loadView(w, r)
	if !ok {
		return nil, false
	}

	query := engine.IndicatorQuery{
		Indicator:      mux.Vars(r)["key"],
		NormalizeEmpty: normalize,
		Reply:          r.URL.Query().Get("reply"),
		TopN:           top,
	}
	res, err := engine.Execute(query, view, s.reg, engine.WithLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return res, true
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVillages(w http.ResponseWriter, r *http.Request) {
	view, ok := s.loadView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, source.NewEnvelope(engine.Rows(view)))
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	rows, err := s.src.Villages(r.Context())
	if err != nil {
		s.logger.Error("Failed to load villages", zap.Error(err))
		writeError(w, http.StatusBadGateway, "village source unavailable")
		return
	}
	writeData(w, source.BuildMetadata(rows, s.reg))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.reg.Categories())
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	cat, err := s.reg.Category(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	view, ok := s.loadView(w, r)
	if !ok {
		return
	}
	writeData(w, map[string]any{
		"category": cat.Key,
		"title":    cat.Title,
		"kind":     cat.Kind,
		"cards":    engine.BuildKPICards(view, cat.Indicators),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	body := map[string]any{
		"indicator": res.Indicator,
		"area":      res.Area,
		"totalDesa": res.TotalDesa,
	}
	if res.Quant != nil {
		body["quant"] = res.Quant
	}
	if res.Summary != nil {
		body["summary"] = res.Summary
	}
	writeData(w, body)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	normalize, err := boolParam(r, "normalize_empty")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, ok := s.loadView(w, r)
	if !ok {
		return
	}
	ind := s.reg.Resolve(mux.Vars(r)["key"])
	counts := engine.BuildCategoryCounts(view, ind.DataKey, engine.WithNormalizeEmpty(normalize))
	writeData(w, map[string]any{
		"indicator": ind,
		"counts":    counts,
		"donut":     engine.ToDonutSeries(counts.Entries(), ind.ValueColors, engine.WithDropZeros(true)),
		"rankedBar": engine.ToRankedBarSeries(counts),
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	if !res.Indicator.IsQuantitative() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("indicator %q is not quantitative", res.Indicator.Key))
		return
	}
	writeData(w, map[string]any{
		"indicator": res.Indicator,
		"buckets":   res.Histogram,
		"donut":     engine.ToDonutSeries(engine.HistogramEntries(res.Histogram), res.Indicator.ValueColors, engine.WithDropZeros(true)),
	})
}

func (s *Server) handleCrossTab(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	writeData(w, map[string]any{
		"indicator": res.Indicator,
		"crossTab":  res.CrossTab,
		"stacked":   res.Stacked,
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	if !res.Indicator.IsQuantitative() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("indicator %q is not quantitative", res.Indicator.Key))
		return
	}
	writeData(w, res.Ranking)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "bar"
	}
	if kind != "bar" && kind != "stacked" {
		writeError(w, http.StatusBadRequest, "kind must be bar or stacked")
		return
	}
	res, ok := s.reportFor(w, r)
	if !ok {
		return
	}
	if res.Empty {
		writeError(w, http.StatusNotFound, "no data to chart")
		return
	}

	var buf bytes.Buffer
	var err error
	if kind == "stacked" {
		var groups []string
		if res.CrossTab != nil {
			groups = res.CrossTab.Groups
		}
		err = render.StackedBarPNG(&buf, res.Stacked, groups, res.Indicator.Label+" per Kecamatan")
	} else {
		err = render.RankedBarPNG(&buf, barPoints(res), res.Indicator.Label)
	}
	if errors.Is(err, render.ErrNoData) {
		writeError(w, http.StatusNotFound, "no data to chart")
		return
	}
	if err != nil {
		s.logger.Error("Failed to render chart", zap.String("indicator", res.Indicator.Key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// barPoints is the histogram for quantitative indicators and the ranked
// category counts otherwise.
func barPoints(res *engine.Result) []engine.ChartPoint {
	if !res.Indicator.IsQuantitative() {
		return res.RankedBar
	}
	points := make([]engine.ChartPoint, len(res.Histogram))
	for i, b := range res.Histogram {
		points[i] = engine.ChartPoint{Label: b.Bucket, Value: float64(b.Count)}
	}
	return points
}

// comparisonFor builds the comparison named by the desa and indicators
// query parameters.
func (s *Server) comparisonFor(w http.ResponseWriter, r *http.Request) (engine.ComparisonResult, bool) {
	desa := listParam(r, "desa")
	indicators := listParam(r, "indicators")
	if len(desa) == 0 || len(indicators) == 0 {
		writeError(w, http.StatusBadRequest, "desa and indicators are required")
		return engine.ComparisonResult{}, false
	}
	view, ok := s.loadView(w, r)
	if !ok {
		return engine.ComparisonResult{}, false
	}
	return engine.BuildComparison(view, desa, indicators, s.reg), true
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	res, ok := s.comparisonFor(w, r)
	if !ok {
		return
	}
	writeData(w, map[string]any{
		"comparison": res,
		"table":      engine.BuildComparisonTable(res),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", contentTypeCSV, helpers.WriteComparisonCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", contentTypeXLSX, helpers.WriteComparisonXLSX)
}

type exportFunc func(io.Writer, engine.ComparisonResult) error

func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write exportFunc) {
	res, ok := s.comparisonFor(w, r)
	if !ok {
		return
	}
	if !res.IsValidForComparison {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"comparison needs at least one known village and %d indicators", engine.MinComparisonIndicators))
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, res); err != nil {
		s.logger.Error("Failed to export comparison", zap.String("format", ext), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export comparison")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, helpers.ComparisonFilename(s.now(), ext)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = schema.AllCategoryKey
	}
	if _, err := s.reg.Category(category); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	view, ok := s.loadView(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := render.DashboardPage(&buf, view, s.reg, category, engine.WithLogger(s.logger))
	if errors.Is(err, render.ErrNoData) {
		writeError(w, http.StatusNotFound, "no villages match the filter")
		return
	}
	if err != nil {
		s.logger.Error("Failed to render dashboard", zap.String("category", category), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
