package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SeptianAdiraharja/Inventory/api/controllers"
	cartcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/cart"
	catalogcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/catalog"
	guestcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/guests"
	inboundcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/inbound"
	outboundcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/outbound"
	requestcontrollers "github.com/SeptianAdiraharja/Inventory/api/controllers/requests"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	"github.com/SeptianAdiraharja/Inventory/internal/cart"
	"github.com/SeptianAdiraharja/Inventory/internal/guests"
	"github.com/SeptianAdiraharja/Inventory/internal/inbound"
	"github.com/SeptianAdiraharja/Inventory/internal/items"
	"github.com/SeptianAdiraharja/Inventory/internal/requests"
	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	pkgredis "github.com/SeptianAdiraharja/Inventory/pkg/redis"
)

// Stores groups the redis backed helpers. Either field may be nil, which
// disables idempotency replay or rate limiting respectively.
type Stores struct {
	Idempotency pkgredis.IdempotencyStore
	RateLimit   middleware.RateLimitStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	stores Stores,
	metricsHandler http.Handler,
	itemService items.Service,
	movementReader catalogcontrollers.MovementReader,
	inboundService inbound.Service,
	cartService cart.Service,
	requestService requests.Service,
	guestService guests.Service,
	outboundReader outboundcontrollers.Reader,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	idempotent := middleware.Idempotency(stores.Idempotency, cfg.Inventory.IdempotencyTTL, logg)
	scanLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("guest_scan", cfg.Inventory.ScanRateWindow, cfg.Inventory.ScanRateLimit),
		stores.RateLimit,
		logg,
	)

	staffOnly := middleware.RequireStaff(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisP, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/categories", catalogcontrollers.ListCategories(itemService, logg))
		r.Route("/items", func(r chi.Router) {
			r.Get("/", catalogcontrollers.ListItems(itemService, logg))
			r.Get("/by-code/{code}", catalogcontrollers.GetItemByCode(itemService, logg))
			r.Get("/{itemID}", catalogcontrollers.GetItem(itemService, logg))
			r.With(staffOnly).Get("/{itemID}/movements", catalogcontrollers.ListMovements(movementReader, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.With(idempotent).Post("/items", cartcontrollers.CartAddItems(cartService, logg))
			r.Patch("/items/{cartItemID}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{cartItemID}", cartcontrollers.CartRemoveItem(cartService, logg))
			r.With(idempotent).Post("/{cartID}/submit", cartcontrollers.CartSubmit(cartService, logg))
		})
		r.Route("/carts", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartHistory(cartService, logg))
			r.Get("/{cartID}", cartcontrollers.CartGet(cartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", catalogcontrollers.ListSuppliers(itemService, logg))
				r.Get("/{supplierID}", catalogcontrollers.GetSupplier(itemService, logg))
			})

			r.Route("/inbound", func(r chi.Router) {
				r.Get("/", inboundcontrollers.ListReceipts(inboundService, logg))
				r.With(idempotent).Post("/", inboundcontrollers.Receive(inboundService, logg))
				r.Get("/{recordID}", inboundcontrollers.GetReceipt(inboundService, logg))
				r.Put("/{recordID}", inboundcontrollers.EditReceipt(inboundService, logg))
				r.Delete("/{recordID}", inboundcontrollers.DeleteReceipt(inboundService, logg))
			})

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", requestcontrollers.ListRequests(requestService, logg))
				r.Post("/{cartID}/approve", requestcontrollers.ApproveCart(requestService, logg))
				r.Post("/{cartID}/reject", requestcontrollers.RejectCart(requestService, logg))
				r.With(idempotent).Post("/{cartID}/release", requestcontrollers.ReleaseCart(requestService, logg))
				r.Post("/items/{cartItemID}/approve", requestcontrollers.ApproveItem(requestService, logg))
				r.Post("/items/{cartItemID}/reject", requestcontrollers.RejectItem(requestService, logg))
			})

			r.Route("/guests/{guestID}", func(r chi.Router) {
				r.Get("/", catalogcontrollers.GetGuest(itemService, logg))
				r.Get("/cart", guestcontrollers.ViewCart(guestService, logg))
				r.With(scanLimit).Post("/scan", guestcontrollers.Scan(guestService, logg))
			})
			r.With(idempotent).Post("/guest-carts/{guestCartID}/release", guestcontrollers.Release(guestService, logg))

			r.Route("/outbound", func(r chi.Router) {
				r.Get("/", outboundcontrollers.List(outboundReader, logg))
				r.Get("/{recordID}", outboundcontrollers.Get(outboundReader, logg))
			})
		})
	})

	return r
}
