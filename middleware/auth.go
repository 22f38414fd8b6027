package middleware

import (
	"errors"
	"net/http"

	"agromart/apperr"
	"agromart/identity"
	"agromart/logging"
	"agromart/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Auth resolves callers for each endpoint family and stores them in the
// request context.
type Auth struct {
	tokens *identity.Tokens
	log    *zap.Logger
}

func NewAuth(tokens *identity.Tokens, log *zap.Logger) *Auth {
	return &Auth{tokens: tokens, log: log}
}

// RequireAdmin accepts an admin bearer token or admin-token cookie.
func (a *Auth) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		caller, err := a.tokens.AdminFromRequest(r)
		if err != nil {
			a.reject(w, r, err)
			return
		}
		next(w, a.withCaller(r, caller), ps)
	}
}

// RequireSupplier accepts a supplier session and falls back to the raw
// x-seller-id header only when no session credential was sent at all.
func (a *Auth) RequireSupplier(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		caller, err := a.tokens.SellerFromRequest(r)
		if errors.Is(err, identity.ErrNoCredentials) {
			caller, err = identity.SellerFromHeader(r)
		}
		if err != nil {
			a.reject(w, r, err)
			return
		}
		next(w, a.withCaller(r, caller), ps)
	}
}

// OptionalUser attaches a buyer when a valid bearer token is present and
// proceeds either way.
func (a *Auth) OptionalUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if caller, err := a.tokens.UserFromRequest(r); err == nil {
			r = a.withCaller(r, caller)
		}
		next(w, r, ps)
	}
}

func (a *Auth) withCaller(r *http.Request, caller identity.Caller) *http.Request {
	ctx := identity.WithCaller(r.Context(), caller)
	l := logging.FromContext(ctx, a.log).With(
		zap.String("caller_kind", string(caller.Kind)),
		zap.String("caller_id", caller.ID),
	)
	return r.WithContext(logging.WithContext(ctx, l))
}

func (a *Auth) reject(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), a.log).Debug("authentication failed", zap.Error(err))
	msg := "invalid or expired credentials"
	if errors.Is(err, identity.ErrNoCredentials) {
		msg = "authentication required"
	}
	utils.RespondWithAppError(w, r, apperr.Unauthorized(msg))
}

// Chain applies mws so that the first one listed runs first.
func Chain(mws ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
