package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sokochain/sokochain-backend/api/controllers"
	"github.com/sokochain/sokochain-backend/api/middleware"
	"github.com/sokochain/sokochain-backend/internal/balances"
	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/internal/purchases"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/config"
	"github.com/sokochain/sokochain-backend/pkg/db"
	"github.com/sokochain/sokochain-backend/pkg/logger"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Vendors   vendors.Service
	Products  products.Service
	Purchases purchases.Service
	Balances  balances.Service
	Platform  platform.Service
	Events    *events.Recorder
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	svcs Services,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.CallerAddress(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.ListVendors(svcs.Vendors, logg))
			r.Post("/", controllers.RegisterVendor(svcs.Vendors, logg))
			r.Get("/{vendorId}", controllers.GetVendor(svcs.Vendors, logg))
			r.Post("/{vendorId}/deactivate", controllers.DeactivateVendor(svcs.Vendors, logg))
			r.Route("/address/{address}", func(r chi.Router) {
				r.Get("/", controllers.GetVendorByAddress(svcs.Vendors, logg))
				r.Get("/registered", controllers.IsRegisteredVendor(svcs.Vendors, logg))
				r.Get("/products", controllers.VendorProducts(svcs.Products, logg))
				r.Get("/balance", controllers.VendorBalance(svcs.Balances, logg))
				r.Get("/payouts", controllers.ListPayouts(svcs.Balances, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Post("/", controllers.ListProduct(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", controllers.BuyProduct(svcs.Purchases, logg))
			r.Get("/{address}", controllers.OrderHistory(svcs.Purchases, logg))
			r.Get("/{address}/products/{productId}", controllers.HasUserPurchased(svcs.Purchases, logg))
		})

		r.Route("/platform", func(r chi.Router) {
			r.Get("/", controllers.PlatformSettings(svcs.Platform, logg))
			r.Get("/summary", controllers.PlatformSummary(svcs.Platform, logg))
			r.Get("/balance", controllers.PlatformBalance(svcs.Balances, logg))
			r.Put("/fee", controllers.UpdatePlatformFee(svcs.Platform, logg))
			r.Post("/withdraw", controllers.WithdrawPlatformFees(svcs.Balances, logg))
		})

		r.Post("/withdrawals/vendor", controllers.WithdrawVendorEarnings(svcs.Balances, logg))

		r.Get("/events", controllers.ListEvents(svcs.Events, logg))
	})

	return r
}
