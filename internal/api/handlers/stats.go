package handlers

import (
	"net/http"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats - returns aggregate statistics over confirmed
// transactions, including per-account balances.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	balances := make([]dto.AccountBalanceResponse, 0, len(stats.Balances))
	for _, balance := range stats.Balances {
		balances = append(balances, dto.AccountBalanceResponse{
			AccountID:    balance.AccountID,
			Name:         balance.Name,
			Currency:     balance.Currency,
			BalanceCents: balance.BalanceCents,
		})
	}

	response := dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		ExpenseCents:      stats.ExpenseCents,
		IncomeCents:       stats.IncomeCents,
		TransferCount:     stats.TransferCount,
		ByCategory:        stats.ByCategory,
		Balances:          balances,
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Trips handles GET /api/stats/trips - returns per-trip spending.
func (h *StatsHandler) Trips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.repo.GetTripStats()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.TripStatsListResponse{
		Trips: make([]dto.TripStatsResponse, 0, len(trips)),
	}
	for _, trip := range trips {
		response.Trips = append(response.Trips, dto.TripStatsResponse{
			Trip:         trip.Trip,
			Transactions: trip.Transactions,
			TotalCents:   trip.TotalCents,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
