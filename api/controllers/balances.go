package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokochain/sokochain-backend/api/middleware"
	"github.com/sokochain/sokochain-backend/api/responses"
	balancesvc "github.com/sokochain/sokochain-backend/internal/balances"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

func VendorBalance(svc balancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		amount, err := svc.GetVendorBalance(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"balance_cents": amount})
	}
}

func PlatformBalance(svc balancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := svc.GetPlatformBalance(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"balance_cents": amount})
	}
}

// WithdrawVendorEarnings pays out the caller's full vendor balance. The
// caller identifies itself via the X-Caller-Address header.
func WithdrawVendorEarnings(svc balancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerAddressFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "caller address header missing"))
			return
		}

		result, err := svc.WithdrawVendorEarnings(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func WithdrawPlatformFees(svc balancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerAddressFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "caller address header missing"))
			return
		}

		result, err := svc.WithdrawPlatformFees(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListPayouts(svc balancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		payouts, err := svc.ListPayouts(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payouts)
	}
}
