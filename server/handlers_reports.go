package server

import (
	"net/http"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
	"github.com/mfld/folioplan/logger"
)

// reportParams are the query parameters shared by all report endpoints.
type reportParams struct {
	scope folioplan.Scope
	drill folioplan.DrillScope
	rng   date.Range
	month date.Month // allocation only; zero means latest
}

func parseReportParams(r *http.Request) (reportParams, error) {
	var p reportParams
	var err error
	q := r.URL.Query()

	if p.scope, err = folioplan.ParseScope(q.Get("scope")); err != nil {
		return p, err
	}
	p.drill = folioplan.Root()
	if layer := q.Get("layer"); layer != "" {
		p.drill = folioplan.InLayer(layer)
	}
	if from := q.Get("from"); from != "" {
		if p.rng.From, err = date.ParseMonth(from); err != nil {
			return p, err
		}
	}
	if to := q.Get("to"); to != "" {
		if p.rng.To, err = date.ParseMonth(to); err != nil {
			return p, err
		}
	}
	if m := q.Get("month"); m != "" {
		if p.month, err = date.ParseMonth(m); err != nil {
			return p, err
		}
	}
	return p, nil
}

// loadReportData fetches the two inputs every report needs.
func (s *Server) loadReportData(r *http.Request) ([]*folioplan.Snapshot, []*folioplan.PolicyVersion, error) {
	history, err := s.store.ListSnapshots(r.Context())
	if err != nil {
		return nil, nil, err
	}
	versions, err := s.store.ListPolicyVersions(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return history, versions, nil
}

// pickSnapshot returns the snapshot of the requested month, or the latest one
// when no month is requested. Nil when history is empty.
func pickSnapshot(history []*folioplan.Snapshot, m date.Month) *folioplan.Snapshot {
	if m.IsZero() {
		if len(history) == 0 {
			return nil
		}
		return history[len(history)-1]
	}
	for _, s := range history {
		if s.Month == m {
			return s
		}
	}
	return nil
}

func (s *Server) handleAllocationReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseReportParams(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	history, versions, err := s.loadReportData(r)
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot load report data", "error", err)
		sendJSONError(w, "failed to load report data", http.StatusInternalServerError)
		return
	}
	snap := pickSnapshot(history, p.month)
	if snap == nil {
		// empty dataset: a neutral, fully populated report
		writeJSON(w, http.StatusOK, &folioplan.AllocationReport{Scope: p.scope, Groups: []folioplan.AllocationGroup{}})
		return
	}
	policy := folioplan.Resolve(versions, snap.Month)
	writeJSON(w, http.StatusOK, folioplan.NewAllocation(snap, p.scope, policy, p.drill))
}

func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseReportParams(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	history, versions, err := s.loadReportData(r)
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot load report data", "error", err)
		sendJSONError(w, "failed to load report data", http.StatusInternalServerError)
		return
	}
	points := []folioplan.TrendPoint{}
	for point := range folioplan.TrendSeries(history, p.scope, p.drill, versions, p.rng) {
		points = append(points, point)
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleBreakdownReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseReportParams(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	history, versions, err := s.loadReportData(r)
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot load report data", "error", err)
		sendJSONError(w, "failed to load report data", http.StatusInternalServerError)
		return
	}
	window := folioplan.Window(history, p.rng)
	if len(window) == 0 {
		writeJSON(w, http.StatusOK, &folioplan.BreakdownReport{Scope: p.scope, Rows: []folioplan.BreakdownRow{}})
		return
	}
	end := window[len(window)-1]
	baseline := folioplan.Baseline(history, window)
	policy := folioplan.Resolve(versions, end.Month)
	writeJSON(w, http.StatusOK, folioplan.NewBreakdown(baseline, end, policy, p.scope, p.drill))
}

// metricsResponse is the summary block of a window: end-state metrics plus
// the window's profit and return rate.
type metricsResponse struct {
	Month    date.Month        `json:"month"`
	Currency string            `json:"currency"`
	Value    folioplan.Amount  `json:"value"`
	Invested folioplan.Amount  `json:"invested"`
	Profit   folioplan.Amount  `json:"profit"`
	Return   folioplan.Percent `json:"return"`
}

func (s *Server) handleMetricsReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseReportParams(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	history, versions, err := s.loadReportData(r)
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot load report data", "error", err)
		sendJSONError(w, "failed to load report data", http.StatusInternalServerError)
		return
	}
	resp := metricsResponse{Currency: s.currency}
	window := folioplan.Window(history, p.rng)
	if len(window) == 0 {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	end := window[len(window)-1]
	endMetrics := folioplan.SnapshotMetrics(end, p.scope, versions)

	var startMetrics *folioplan.Metrics
	if baseline := folioplan.Baseline(history, window); baseline != nil {
		m := folioplan.SnapshotMetrics(baseline, p.scope, versions)
		startMetrics = &m
	}
	profit := folioplan.PeriodProfit(startMetrics, endMetrics)

	resp.Month = end.Month
	resp.Value = endMetrics.Value
	resp.Invested = endMetrics.Invested
	resp.Profit = profit
	resp.Return = folioplan.ReturnRate(profit, endMetrics.Invested)
	writeJSON(w, http.StatusOK, resp)
}
