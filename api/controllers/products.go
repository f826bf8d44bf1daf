package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokochain/sokochain-backend/api/responses"
	"github.com/sokochain/sokochain-backend/api/validators"
	productsvc "github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

type listProductRequest struct {
	VendorAddress string `json:"vendor_address" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Category      string `json:"category,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	CostCents     int64  `json:"cost_cents" validate:"required,min=1"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Stock         int    `json:"stock" validate:"min=0"`
}

// ListProduct puts a new product on the shelf for a registered vendor.
func ListProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload listProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.ListProduct(r.Context(), productsvc.ListProductInput{
			VendorAddress: payload.VendorAddress,
			Name:          payload.Name,
			Category:      payload.Category,
			ImageURL:      payload.ImageURL,
			CostCents:     payload.CostCents,
			Rating:        payload.Rating,
			Stock:         payload.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func VendorProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		products, err := svc.ListVendorProducts(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
