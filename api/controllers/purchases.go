package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokochain/sokochain-backend/api/responses"
	"github.com/sokochain/sokochain-backend/api/validators"
	purchasesvc "github.com/sokochain/sokochain-backend/internal/purchases"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

type buyProductRequest struct {
	BuyerAddress string `json:"buyer_address" validate:"required"`
	ProductID    uint64 `json:"product_id" validate:"required,min=1"`
	AmountCents  int64  `json:"amount_cents" validate:"min=0"`
}

// BuyProduct runs one purchase attempt against the ledger.
func BuyProduct(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload buyProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Buy(r.Context(), purchasesvc.BuyInput{
			BuyerAddress: payload.BuyerAddress,
			ProductID:    payload.ProductID,
			AmountCents:  payload.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderHistory(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		orders, err := svc.GetOrderHistory(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func HasUserPurchased(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchased, err := svc.HasUserPurchased(r.Context(), address, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"purchased": purchased})
	}
}
