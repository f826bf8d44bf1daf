package controllers

import (
	"net/http"

	"github.com/sokochain/sokochain-backend/api/responses"
	"github.com/sokochain/sokochain-backend/api/validators"
	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

// ListEvents serves the ledger's notification feed in append order.
func ListEvents(recorder *events.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := recorder.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
