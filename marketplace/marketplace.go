package marketplace

import (
	"net/http"
	"strconv"
	"strings"

	"agromart/apperr"
	"agromart/identity"
	"agromart/logging"
	"agromart/orders"
	"agromart/receipt"
	"agromart/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Handler serves buyer-facing order routes. A bearer token is optional; when
// it is absent the buyer identifies through userId in the body or query.
type Handler struct {
	orders   *orders.Service
	receipts *receipt.Renderer
	log      *zap.Logger
}

func NewHandler(ord *orders.Service, receipts *receipt.Renderer, log *zap.Logger) *Handler {
	return &Handler{orders: ord, receipts: receipts, log: log}
}

type cancelRequest struct {
	Reason string `json:"reason"`
	UserID string `json:"userId"`
}

// buyerID prefers the token identity over a client-supplied id.
func buyerID(r *http.Request, fallback string) string {
	if c, ok := identity.CallerFrom(r.Context()); ok && c.Kind == identity.KindUser {
		return c.ID
	}
	return strings.TrimSpace(fallback)
}

// CancelOrder cancels a pending, confirmed or processing order and returns
// the refund due.
//
// Endpoint: POST /marketplace/orders/:id/cancel
// Body: {"reason": "...", "userId": "..."}
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body cancelRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	userID := buyerID(r, body.UserID)
	if userID == "" {
		utils.RespondWithAppError(w, r, apperr.Validation("userId is required"))
		return
	}

	order, refund, err := h.orders.Cancel(r.Context(), userID, ps.ByName("id"), strings.TrimSpace(body.Reason))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Order cancelled successfully",
		"order":        order,
		"refundAmount": refund,
	})
}

// GetOrder returns a buyer's own order.
//
// Endpoint: GET /marketplace/orders/:id?userId=
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := buyerID(r, r.URL.Query().Get("userId"))
	if userID == "" {
		utils.RespondWithAppError(w, r, apperr.Validation("userId is required"))
		return
	}

	order, err := h.orders.Marketplace(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// Receipt streams a PDF receipt with a signed QR code.
//
// Endpoint: GET /marketplace/orders/:id/receipt?userId=
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := buyerID(r, r.URL.Query().Get("userId"))
	if userID == "" {
		utils.RespondWithAppError(w, r, apperr.Validation("userId is required"))
		return
	}

	order, err := h.orders.Marketplace(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	pdf, err := h.receipts.Render(order)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err, "render receipt"))
		return
	}

	logging.FromContext(r.Context(), h.log).Debug("receipt rendered",
		zap.String("order", order.ID.Hex()),
		zap.Int("bytes", len(pdf)))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(order)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
