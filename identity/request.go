package identity

import (
	"errors"
	"net/http"
	"strings"
)

const (
	AdminCookie    = "admin-token"
	SupplierCookie = "supplier-session"
	SellerHeader   = "x-seller-id"
)

var ErrNoCredentials = errors.New("no credentials supplied")

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 8 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// AdminFromRequest resolves an admin from the bearer token or the admin-token cookie.
func (t *Tokens) AdminFromRequest(r *http.Request) (Caller, error) {
	token := BearerToken(r)
	if token == "" {
		token = cookieValue(r, AdminCookie)
	}
	if token == "" {
		return Caller{}, ErrNoCredentials
	}
	return t.VerifyAdmin(token)
}

// SellerFromRequest resolves a seller from the supplier session cookie or bearer token.
func (t *Tokens) SellerFromRequest(r *http.Request) (Caller, error) {
	token := cookieValue(r, SupplierCookie)
	if token == "" {
		token = BearerToken(r)
	}
	if token == "" {
		return Caller{}, ErrNoCredentials
	}
	return t.VerifySeller(token)
}

// SellerFromHeader trusts the raw x-seller-id header.
func SellerFromHeader(r *http.Request) (Caller, error) {
	id := strings.TrimSpace(r.Header.Get(SellerHeader))
	if id == "" {
		return Caller{}, ErrNoCredentials
	}
	return Caller{Kind: KindSeller, ID: id}, nil
}

// UserFromRequest resolves a buyer from the bearer token.
func (t *Tokens) UserFromRequest(r *http.Request) (Caller, error) {
	token := BearerToken(r)
	if token == "" {
		return Caller{}, ErrNoCredentials
	}
	return t.VerifyUser(token)
}
