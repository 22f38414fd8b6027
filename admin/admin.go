package admin

import (
	"net/http"

	"agromart/activity"
	"agromart/apperr"
	"agromart/documents"
	"agromart/identity"
	"agromart/models"
	"agromart/orders"
	"agromart/products"
	"agromart/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the admin dashboard. Every route sits behind
// middleware.Auth.RequireAdmin so the caller is always in the context.
type Handler struct {
	docs     *documents.Service
	orders   *orders.Service
	stock    products.Repository
	activity *activity.Service
}

func NewHandler(docs *documents.Service, ord *orders.Service, stock products.Repository, act *activity.Service) *Handler {
	return &Handler{docs: docs, orders: ord, stock: stock, activity: act}
}

type reviewRequest struct {
	Action string `json:"action" validate:"required"`
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

func callerOf(r *http.Request) identity.Caller {
	c, _ := identity.CallerFrom(r.Context())
	return c
}

// ReviewDocument approves or rejects a verification document.
//
// Endpoint: PUT /admin/documents/:ref
// Body: {"action": "approve"|"reject", "reason": "..."}
func (h *Handler) ReviewDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body reviewRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	holder, err := h.docs.Review(r.Context(), callerOf(r), ps.ByName("ref"), body.Action, body.Reason)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	msg := "Document approved"
	if body.Action == "reject" {
		msg = "Document rejected"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": msg, "family": holder.Family})
}

// UpdateOrderStatus overwrites the status of a supplier or farmer order.
//
// Endpoint: PUT /admin/orders/:orderId
// Body: {"status": "...", "note": "..."}
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body statusRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	res, err := h.orders.UpdateStatus(r.Context(), callerOf(r), ps.ByName("orderId"), body.Status, body.Note)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Order status updated",
		"family":  res.Family,
		"order":   res.Order(),
	})
}

// LowStock lists products at or under their reorder threshold.
//
// Endpoint: GET /admin/products/low-stock?limit=&sellerId=
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	list, err := products.ListLowStock(r.Context(), h.stock, r.URL.Query().Get("sellerId"), limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// RecentOrders lists supplier orders newest first.
//
// Endpoint: GET /admin/orders/recent?limit=&status=&search=&sellerId=
func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := h.orders.Recent(r.Context(), orders.RecentQuery{
		SellerID: q.Get("sellerId"),
		Status:   models.OrderStatus(q.Get("status")),
		Search:   q.Get("search"),
		Limit:    limit,
	})
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// TopProducts ranks products by paid revenue.
//
// Endpoint: GET /admin/products/top?limit=&sellerId=
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	list, err := h.orders.TopProducts(r.Context(), r.URL.Query().Get("sellerId"), limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// AuditLogs lists admin actions newest first.
//
// Endpoint: GET /admin/audit-logs?limit=&action=
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if limit == 0 {
		utils.RespondWithJSON(w, http.StatusOK, []models.AuditLog{})
		return
	}
	logs, err := h.activity.AuditLogs(r.Context(), r.URL.Query().Get("action"), limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}

// Notifications lists admin notifications newest first.
//
// Endpoint: GET /admin/notifications?limit=&unread=true
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if limit == 0 {
		utils.RespondWithJSON(w, http.StatusOK, []models.Notification{})
		return
	}
	list, err := h.activity.Notifications(r.Context(), utils.ParseBool(r, "unread"), limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// MarkNotificationRead is idempotent.
//
// Endpoint: PUT /admin/notifications/:id/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !callerOf(r).IsAdmin() {
		utils.RespondWithAppError(w, r, apperr.Forbidden("admin access required"))
		return
	}
	if err := h.activity.MarkRead(r.Context(), ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Notification marked as read"})
}
