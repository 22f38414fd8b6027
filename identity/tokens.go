package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongRole    = errors.New("token role not permitted")
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// Claims are carried by admin and supplier session tokens.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	SellerID string `json:"sellerId,omitempty"`
	jwt.RegisteredClaims
}

// userClaims matches tokens issued by the buyer login flow.
type userClaims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

func (t *Tokens) IssueAdmin(email string) (string, time.Time, error) {
	return t.issue(Claims{Email: email, Role: RoleAdmin}, email)
}

func (t *Tokens) IssueSeller(sellerID, email string) (string, time.Time, error) {
	return t.issue(Claims{Email: email, Role: RoleSeller, SellerID: sellerID}, sellerID)
}

func (t *Tokens) issue(claims Claims, subject string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *Tokens) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// VerifyAdmin accepts only tokens whose role claim is admin.
func (t *Tokens) VerifyAdmin(tokenString string) (Caller, error) {
	claims := &Claims{}
	if err := t.parse(tokenString, claims); err != nil {
		return Caller{}, err
	}
	if claims.Role != RoleAdmin {
		return Caller{}, ErrWrongRole
	}
	return Caller{Kind: KindAdmin, ID: claims.Email, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifySeller accepts supplier session tokens carrying a seller id.
func (t *Tokens) VerifySeller(tokenString string) (Caller, error) {
	claims := &Claims{}
	if err := t.parse(tokenString, claims); err != nil {
		return Caller{}, err
	}
	if claims.Role != RoleSeller || claims.SellerID == "" {
		return Caller{}, ErrWrongRole
	}
	return Caller{Kind: KindSeller, ID: claims.SellerID, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyUser accepts buyer tokens; only the userId claim is required.
func (t *Tokens) VerifyUser(tokenString string) (Caller, error) {
	claims := &userClaims{}
	if err := t.parse(tokenString, claims); err != nil {
		return Caller{}, err
	}
	if claims.UserID == "" {
		return Caller{}, ErrInvalidToken
	}
	return Caller{Kind: KindUser, ID: claims.UserID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
