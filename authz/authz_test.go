package authz

import (
	"testing"

	"agromart/apperr"
	"agromart/identity"

	"github.com/stretchr/testify/assert"
)

type doc struct{ owner string }

func (d doc) OwnerID() string { return d.owner }

func TestAuthorize(t *testing.T) {
	seller := identity.Caller{Kind: identity.KindSeller, ID: "S1"}
	otherSeller := identity.Caller{Kind: identity.KindSeller, ID: "S2"}
	user := identity.Caller{Kind: identity.KindUser, ID: "S1"}
	admin := identity.Caller{Kind: identity.KindAdmin, ID: "admin@agromart.test"}
	sentinel := identity.Caller{Kind: identity.KindSeller, ID: identity.SentinelSellerID}

	cases := []struct {
		name   string
		policy Policy
		caller identity.Caller
		res    doc
		want   apperr.Code
	}{
		{"owner seller", SellerOwned, seller, doc{"S1"}, ""},
		{"other seller", SellerOwned, otherSeller, doc{"S1"}, apperr.CodeForbidden},
		{"user id collides with seller id", SellerOwned, user, doc{"S1"}, apperr.CodeForbidden},
		{"admin bypass", SellerOwned, admin, doc{"S1"}, ""},
		{"owner user", UserOwned, user, doc{"S1"}, ""},
		{"resource without owner", UserOwned, user, doc{""}, apperr.CodeForbidden},
		{"anonymous", UserOwned, identity.Caller{}, doc{"S1"}, apperr.CodeUnauthorized},
		{"sentinel rejected", SellerOwned, sentinel, doc{"S1"}, apperr.CodeUnauthorized},
		{"sentinel allowed", Policy{Field: FieldSeller, AllowSentinel: true}, sentinel, doc{"S1"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.policy.Authorize(tc.caller, tc.res)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, apperr.CodeOf(err))
		})
	}
}

func TestAdmit(t *testing.T) {
	sentinel := identity.Caller{Kind: identity.KindSeller, ID: identity.SentinelSellerID}

	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(SellerOwned.Admit(identity.Caller{})))
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(SellerOwned.Admit(sentinel)))
	assert.NoError(t, Policy{Field: FieldSeller, AllowSentinel: true}.Admit(sentinel))
	assert.NoError(t, SellerOwned.Admit(identity.Caller{Kind: identity.KindSeller, ID: "S1"}))
}
