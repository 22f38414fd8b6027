package authz

import (
	"agromart/apperr"
	"agromart/identity"
)

// Ownership fields used by the marketplace documents.
const (
	FieldSeller = "sellerId"
	FieldUser   = "userId"
)

// Owned is implemented by documents that belong to a seller or a user.
type Owned interface {
	OwnerID() string
}

// Policy checks ownership through one named field.
//
// AllowSentinel keeps the legacy behaviour where the placeholder seller id
// skips the ownership check. When false the placeholder is rejected.
type Policy struct {
	Field         string
	AllowSentinel bool
}

var (
	SellerOwned = Policy{Field: FieldSeller}
	UserOwned   = Policy{Field: FieldUser}
)

// callerKind is the identity kind whose id is compared against the field.
func (p Policy) callerKind() identity.Kind {
	switch p.Field {
	case FieldSeller:
		return identity.KindSeller
	case FieldUser:
		return identity.KindUser
	}
	return identity.KindAnonymous
}

// Admit rejects callers that can never act under p, before any lookup.
func (p Policy) Admit(caller identity.Caller) error {
	if !caller.Authenticated() {
		return apperr.Unauthorized("authentication required")
	}
	if caller.IsSentinel() && !p.AllowSentinel {
		return apperr.Unauthorized("seller identity is not configured")
	}
	return nil
}

// Authorize allows admins, and otherwise only the caller whose id matches
// the resource's owner field.
func (p Policy) Authorize(caller identity.Caller, res Owned) error {
	if err := p.Admit(caller); err != nil {
		return err
	}
	if caller.IsAdmin() || caller.IsSentinel() {
		return nil
	}
	if caller.Kind != p.callerKind() {
		return apperr.Forbidden("caller cannot act on this resource")
	}
	if owner := res.OwnerID(); owner == "" || owner != caller.ID {
		return apperr.Forbidden("not the owner of this resource")
	}
	return nil
}
