package auth

import (
	"errors"
	"net/http"
	"time"

	"agromart/apperr"
	"agromart/db"
	"agromart/identity"
	"agromart/logging"
	"agromart/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler serves login and logout for admins and suppliers.
type Handler struct {
	tokens       *identity.Tokens
	admin        identity.AdminCredentials
	sellers      SellerStore
	cookieSecure bool
	log          *zap.Logger
}

func NewHandler(tokens *identity.Tokens, admin identity.AdminCredentials, sellers SellerStore, cookieSecure bool, log *zap.Logger) *Handler {
	return &Handler{tokens: tokens, admin: admin, sellers: sellers, cookieSecure: cookieSecure, log: log}
}

// AdminLogin handles POST /admin/login and POST /auth/admin/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body loginRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if !h.admin.Match(body.Email, body.Password) {
		logging.FromContext(r.Context(), h.log).Warn("admin login rejected", zap.String("email", body.Email))
		utils.RespondWithAppError(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, expiresAt, err := h.tokens.IssueAdmin(h.admin.Email)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err, "issue admin token"))
		return
	}
	h.setCookie(w, identity.AdminCookie, token, expiresAt)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":     token,
		"expiresAt": expiresAt,
		"admin":     utils.M{"email": h.admin.Email, "role": identity.RoleAdmin},
	})
}

// AdminLogout always succeeds; the client is told to drop the cookie.
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.clearCookie(w, identity.AdminCookie)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out successfully"})
}

// AdminMe echoes the resolved admin session.
func (h *Handler) AdminMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := identity.CallerFrom(r.Context())
	if !ok || !caller.IsAdmin() {
		utils.RespondWithAppError(w, r, apperr.Unauthorized("authentication required"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"email":     caller.Email,
		"role":      identity.RoleAdmin,
		"expiresAt": caller.ExpiresAt,
	})
}

// SupplierLogin checks a seller's password and opens a supplier session.
func (h *Handler) SupplierLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body loginRequest
	if err := utils.DecodeAndValidate(r, &body); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	seller, err := h.sellers.FindByEmail(r.Context(), body.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		utils.RespondWithAppError(w, r, apperr.Internal(err, "find seller"))
		return
	}
	if seller == nil || !identity.CheckPassword(seller.PasswordHash, body.Password) {
		logging.FromContext(r.Context(), h.log).Warn("supplier login rejected", zap.String("email", body.Email))
		utils.RespondWithAppError(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, expiresAt, err := h.tokens.IssueSeller(seller.ID.Hex(), seller.Email)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err, "issue supplier token"))
		return
	}
	h.setCookie(w, identity.SupplierCookie, token, expiresAt)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":     token,
		"expiresAt": expiresAt,
		"seller":    seller,
	})
}

func (h *Handler) SupplierLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.clearCookie(w, identity.SupplierCookie)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out successfully"})
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
