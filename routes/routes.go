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

// AddAuthRoutes wires login and logout. Only the login routes are rate
// limited; logout always succeeds.
func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, mw *middleware.Auth, rateLimiter *ratelim.RateLimiter) {
	router.POST("/admin/login", rateLimiter.Limit(h.AdminLogin))
	router.POST("/auth/admin/login", rateLimiter.Limit(h.AdminLogin))
	router.POST("/auth/admin/logout", h.AdminLogout)
	router.GET("/auth/admin/me", mw.RequireAdmin(h.AdminMe))

	router.POST("/auth/supplier/login", rateLimiter.Limit(h.SupplierLogin))
	router.POST("/auth/supplier/logout", h.SupplierLogout)
}

func AddAdminRoutes(router *httprouter.Router, h *admin.Handler, mw *middleware.Auth, stream httprouter.Handle) {
	protect := mw.RequireAdmin

	router.PUT("/admin/documents/:ref", protect(h.ReviewDocument))
	router.PUT("/admin/orders/:orderId", protect(h.UpdateOrderStatus))
	router.GET("/admin/orders/recent", protect(h.RecentOrders))
	router.GET("/admin/products/low-stock", protect(h.LowStock))
	router.GET("/admin/products/top", protect(h.TopProducts))
	router.GET("/admin/audit-logs", protect(h.AuditLogs))
	router.GET("/admin/notifications", protect(h.Notifications))
	router.PUT("/admin/notifications/:id/read", protect(h.MarkNotificationRead))
	if stream != nil {
		router.GET("/admin/notifications/stream", protect(stream))
	}
}

func AddSupplierRoutes(router *httprouter.Router, h *supplier.Handler, mw *middleware.Auth) {
	protect := mw.RequireSupplier

	router.PUT("/supplier/orders/:orderId", protect(h.UpdateOrderStatus))
	router.GET("/supplier/orders/recent", protect(h.RecentOrders))
	router.GET("/supplier/products/low-stock", protect(h.LowStock))
	router.GET("/supplier/products/top", protect(h.TopProducts))
	router.GET("/supplier/reviews", protect(h.ListReviews))
	router.POST("/supplier/reviews/:reviewId/flag", protect(h.FlagReview))
	router.POST("/supplier/reviews/:reviewId/respond", protect(h.RespondToReview))
}

func AddMarketplaceRoutes(router *httprouter.Router, h *marketplace.Handler, mw *middleware.Auth) {
	router.POST("/marketplace/orders/:id/cancel", mw.OptionalUser(h.CancelOrder))
	router.GET("/marketplace/orders/:id", mw.OptionalUser(h.GetOrder))
	router.GET("/marketplace/orders/:id/receipt", mw.OptionalUser(h.Receipt))
}

// AddOpsRoutes exposes liveness and Prometheus metrics.
func AddOpsRoutes(router *httprouter.Router, metricsHandler http.Handler) {
	router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("200"))
	})
	if metricsHandler != nil {
		router.Handler(http.MethodGet, "/metrics", metricsHandler)
	}
}
