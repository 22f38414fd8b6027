package routes

import (
	"net/http"

	"agromart/admin"
	"agromart/auth"
	"agromart/marketplace"
	"agromart/middleware"
	"agromart/ratelim"
	"agromart/supplier"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles every HTTP surface the server exposes.
type Handlers struct {
	Auth        *auth.Handler
	Admin       *admin.Handler
	Supplier    *supplier.Handler
	Marketplace *marketplace.Handler
	Stream      httprouter.Handle
	Metrics     http.Handler
}

func RoutesWrapper(router *httprouter.Router, h Handlers, mw *middleware.Auth, rateLimiter *ratelim.RateLimiter) {
	AddOpsRoutes(router, h.Metrics)
	AddAuthRoutes(router, h.Auth, mw, rateLimiter)
	AddAdminRoutes(router, h.Admin, mw, h.Stream)
	AddSupplierRoutes(router, h.Supplier, mw)
	AddMarketplaceRoutes(router, h.Marketplace, mw)
}
