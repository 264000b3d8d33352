package http

import (
	"encoding/json"
	"net/http"

	"finbook/internal/core"
	"finbook/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions()
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	tx.ID = ""

	id, err := s.svc.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// updateRequest mirrors the transaction wire format with every field
// optional; absent fields are left untouched. The paid date is owned by the
// toggle endpoint and cannot be set here.
type updateRequest struct {
	Description      *string     `json:"description"`
	Amount           *core.Money `json:"amount"`
	Type             *string     `json:"type"`
	Category         *string     `json:"category"`
	Recurring        *bool       `json:"isRecurring"`
	RemainingBalance *core.Money `json:"remainingBalance"`
	InterestRate     *float64    `json:"interestRate"`
	DueDay           *int        `json:"dueDate"`
}

func (req updateRequest) patch() store.Patch {
	var p store.Patch
	p.Description = req.Description
	if req.Amount != nil {
		p.AmountCents = &req.Amount.Cents
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		p.Type = &t
	}
	p.Category = req.Category
	p.Recurring = req.Recurring
	if req.RemainingBalance != nil {
		p.BalanceCents = &req.RemainingBalance.Cents
	}
	p.InterestRate = req.InterestRate
	p.DueDay = req.DueDay
	return p
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.svc.Update(r.Context(), id, req.patch()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.TogglePaid(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "toggled"})
}
