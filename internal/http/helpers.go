package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"mizaniya/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

type errorResponse struct {
	Error string `json:"error"`
}

// stateResponse is the snapshot every mutation and GET /api/state returns.
// Records are sorted newest-first for the presentation layer's convenience;
// the engine itself keeps them id-keyed only.
type stateResponse struct {
	Balance          core.Money          `json:"balance"`
	BalanceFormatted string              `json:"balanceFormatted"`
	Records          []core.Record       `json:"records"`
	History          []core.BalanceEvent `json:"history"`
	Settings         core.Settings       `json:"settings"`
	StorageWarning   string              `json:"storageWarning,omitempty"`
}

func (s *Server) stateResponse(state core.State) stateResponse {
	records := make([]core.Record, 0, len(state.Records))
	for _, r := range state.Records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].OccurredAt.Equal(records[j].OccurredAt) {
			return records[i].OccurredAt.After(records[j].OccurredAt)
		}
		return records[i].ID < records[j].ID
	})

	history := make([]core.BalanceEvent, len(state.History))
	copy(history, state.History)

	resp := stateResponse{
		Balance:          state.Balance,
		BalanceFormatted: state.Balance.Format(state.Settings.Currency),
		Records:          records,
		History:          history,
		Settings:         state.Settings,
	}
	if err := s.ledger.LastSaveError(); err != nil {
		resp.StorageWarning = "changes could not be saved to local storage; they remain available for this session"
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseSettlement maps wire statuses onto the settlement sum type. The
// legacy UI sent Arabic labels; any of its "paid" variants counts as
// settled, everything else as unsettled.
func parseSettlement(s string) core.SettlementStatus {
	switch strings.TrimSpace(s) {
	case "":
		return ""
	case string(core.StatusSettled), "مدفوع", "كامل", "مدفوع بالكامل":
		return core.StatusSettled
	default:
		return core.StatusUnsettled
	}
}
