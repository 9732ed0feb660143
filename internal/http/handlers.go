package http

import (
	"log/slog"
	"net/http"
	"time"

	"mizaniya/internal/core"
)

type recordRequest struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	ImageURL     string `json:"imageUrl"`
	ExpectedDate string `json:"expectedDate"`
}

type adjustRequest struct {
	Amount      string `json:"amount"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
}

type settingsRequest struct {
	CurrencyCode  string `json:"currencyCode"`
	DarkMode      bool   `json:"darkMode"`
	BalanceHidden bool   `json:"balanceHidden"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse(s.ledger.Snapshot()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		History []core.BalanceEvent `json:"history"`
	}{History: s.ledger.History()}
	writeJSON(w, http.StatusOK, resp)
}

// handleCatalog serves the static currency and category catalogs the form
// layer validates against.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Currencies []core.Currency              `json:"currencies"`
		Categories map[core.RecordKind][]string `json:"categories"`
	}{
		Currencies: core.Currencies,
		Categories: map[core.RecordKind][]string{
			core.KindExpense:    core.CategoriesFor(core.KindExpense),
			core.KindReceivable: core.CategoriesFor(core.KindReceivable),
			core.KindPayable:    core.CategoriesFor(core.KindPayable),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	occurredAt := time.Now()
	if req.Date != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date")
			return
		}
	}
	var expectedAt time.Time
	if req.ExpectedDate != "" {
		expectedAt, err = time.Parse(time.RFC3339, req.ExpectedDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid expected date")
			return
		}
	}

	rec := core.Record{
		ID:            sanitizeInput(req.ID),
		Kind:          core.RecordKind(sanitizeInput(req.Type)),
		Category:      sanitizeInput(req.Category),
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		OccurredAt:    occurredAt,
		Settlement:    parseSettlement(req.Status),
		AttachmentRef: sanitizeInput(req.ImageURL),
		ExpectedAt:    expectedAt,
	}

	state, err := s.ledger.UpsertRecord(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(state))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}
	// Unknown ids are a benign no-op, so delete is idempotent under retry.
	state := s.ledger.DeleteRecord(r.Context(), id)
	writeJSON(w, http.StatusOK, s.stateResponse(state))
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	dir := core.Direction(sanitizeInput(req.Direction))
	state, err := s.ledger.AdjustBalance(r.Context(), core.Money{Cents: cents}, dir, sanitizeInput(req.Description))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(state))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency, ok := core.CurrencyByCode(sanitizeInput(req.CurrencyCode))
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unsupported currency")
		return
	}

	state := s.ledger.UpdateSettings(r.Context(), core.Settings{
		Currency:      currency,
		DarkMode:      req.DarkMode,
		BalanceHidden: req.BalanceHidden,
	})
	writeJSON(w, http.StatusOK, s.stateResponse(state))
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(r.Context(), "Clearing all ledger data")
	state := s.ledger.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, s.stateResponse(state))
}
