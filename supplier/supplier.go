package supplier

import (
	"net/http"

	"agromart/identity"
	"agromart/models"
	"agromart/orders"
	"agromart/products"
	"agromart/reviews"
	"agromart/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the supplier portal. Routes sit behind
// middleware.Auth.RequireSupplier, so reads are always scoped to the caller.
type Handler struct {
	orders  *orders.Service
	stock   products.Repository
	reviews *reviews.Service
}

func NewHandler(ord *orders.Service, stock products.Repository, rev *reviews.Service) *Handler {
	return &Handler{orders: ord, stock: stock, reviews: rev}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

type flagRequest struct {
	Flagged *bool  `json:"flagged" validate:"required"`
	Reason  string `json:"reason"`
}

type respondRequest struct {
	Message string `json:"message"`
}

func callerOf(r *http.Request) identity.Caller {
	c, _ := identity.CallerFrom(r.Context())
	return c
}

// UpdateOrderStatus appends a status change to one of the caller's orders.
//
// Endpoint: PUT /supplier/orders/:orderId
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body statusRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	order, err := h.orders.UpdateSupplierOrder(r.Context(), callerOf(r), ps.ByName("orderId"), body.Status, body.Note)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// Endpoint: GET /supplier/orders/recent?limit=&status=&search=
func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := h.orders.Recent(r.Context(), orders.RecentQuery{
		SellerID: callerOf(r).ID,
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

// Endpoint: GET /supplier/products/low-stock?limit=
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	list, err := products.ListLowStock(r.Context(), h.stock, callerOf(r).ID, limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// Endpoint: GET /supplier/products/top?limit=
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	list, err := h.orders.TopProducts(r.Context(), callerOf(r).ID, limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// Endpoint: GET /supplier/reviews?flagged=true&limit=
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := utils.ParseLimit(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	list, err := h.reviews.List(r.Context(), callerOf(r), utils.ParseBool(r, "flagged"), limit)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// FlagReview sets or clears the moderation flag on one of the caller's reviews.
//
// Endpoint: POST /supplier/reviews/:reviewId/flag
// Body: {"flagged": true, "reason": "..."}
func (h *Handler) FlagReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body flagRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Flag(r.Context(), callerOf(r), ps.ByName("reviewId"), *body.Flagged, body.Reason)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}

// RespondToReview stores the seller's reply.
//
// Endpoint: POST /supplier/reviews/:reviewId/respond
// Body: {"message": "..."}
func (h *Handler) RespondToReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body respondRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Respond(r.Context(), callerOf(r), ps.ByName("reviewId"), body.Message)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}
