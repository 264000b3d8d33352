package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"finbook/internal/core"
	"finbook/internal/report"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.ComputeTotals(s.svc.Transactions()))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	t := core.TransactionType(r.URL.Query().Get("type"))
	if t == "" {
		t = core.Expense
	}
	if !t.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be 'income' or 'expense'"})
		return
	}

	buckets := report.Breakdown(s.svc.Transactions(), t, s.opts.TopGroups)
	if buckets == nil {
		buckets = []report.Bucket{}
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points := report.MonthlyTrend(s.svc.Transactions(), s.opts.TrendMonths)
	if points == nil {
		points = []report.MonthPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

type billsResponse struct {
	Rollups          []report.CategoryRollup `json:"rollups"`
	TotalMonthly     core.Money              `json:"totalMonthly"`
	TotalDebtBalance core.Money              `json:"totalDebtBalance"`
	Progress         report.Progress         `json:"progress"`
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions()
	now := time.Now()

	rollups := report.RecurringRollups(txs, now)
	if rollups == nil {
		rollups = []report.CategoryRollup{}
	}
	totalMonthly := report.TotalMonthlyObligations(rollups)

	writeJSON(w, http.StatusOK, billsResponse{
		Rollups:          rollups,
		TotalMonthly:     totalMonthly,
		TotalDebtBalance: report.TotalDebtBalance(txs),
		Progress:         report.PaymentProgress(txs, totalMonthly, now),
	})
}

// handleResetMonth clears the paid state of every recurring expense. The
// explicit confirm flag stands in for the client-side confirmation dialog:
// without it the request is rejected before anything is touched.
func (s *Server) handleResetMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Confirm {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reset requires confirmation"})
		return
	}

	reset, err := s.svc.ResetMonth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reset": reset})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid month"})
			return
		}
		month = time.Month(m)
	}

	byDay := report.DueCalendar(s.svc.Transactions())
	grid := report.MonthGrid(year, month, byDay)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"weeks": grid,
	})
}

type debtsResponse struct {
	Debts []core.Transaction `json:"debts"`
	Total core.Money         `json:"total"`
}

// handleDebts lists open balances in avalanche payoff order, highest
// interest rate first.
func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions()
	debts := report.AvalancheOrder(txs)
	if debts == nil {
		debts = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, debtsResponse{
		Debts: debts,
		Total: report.TotalDebtBalance(txs),
	})
}

func (s *Server) handleReallocate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Total string `json:"total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	plan, err := s.svc.ReallocateDebt(r.Context(), req.Total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": plan})
}
