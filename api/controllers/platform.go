package controllers

import (
	"net/http"

	"github.com/sokochain/sokochain-backend/api/middleware"
	"github.com/sokochain/sokochain-backend/api/responses"
	"github.com/sokochain/sokochain-backend/api/validators"
	platformsvc "github.com/sokochain/sokochain-backend/internal/platform"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

func PlatformSettings(svc platformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

func PlatformSummary(svc platformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type updateFeeRequest struct {
	FeePercent *int `json:"fee_percent" validate:"required,min=0"`
}

// UpdatePlatformFee changes the fee applied to subsequent purchases. Owner
// only; identified by the X-Caller-Address header.
func UpdatePlatformFee(svc platformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerAddressFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "caller address header missing"))
			return
		}

		var payload updateFeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateFee(r.Context(), caller, *payload.FeePercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}
