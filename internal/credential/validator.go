// Package credential inspects bearer credentials locally. Signatures are not
// verified here; the directory enforces them again server-side.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed indicates the credential could not be decoded.
	ErrMalformed = errors.New("credential: malformed")
	// ErrExpired indicates the exp claim has elapsed.
	ErrExpired = errors.New("credential: expired")
)

// Claims holds what the console reads from a credential payload.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Validator decodes credentials and checks their expiry.
type Validator struct {
	now    func() time.Time
	parser *jwt.Parser
}

// Option customizes a Validator.
type Option func(*Validator)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.now = clock
		}
	}
}

// NewValidator constructs a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// IsValid reports whether token decodes and its exp lies strictly in the
// future. Every failure collapses to false.
func (v *Validator) IsValid(token string) bool {
	_, err := v.Inspect(token)
	return err == nil
}

// Inspect decodes the payload and returns ErrMalformed or ErrExpired when the
// credential is unusable.
func (v *Validator) Inspect(token string) (claims Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = Claims{}, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	claims, err = v.decode(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.ExpiresAt.Unix() <= v.now().Unix() {
		return claims, ErrExpired
	}
	return claims, nil
}

func (v *Validator) decode(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return Claims{}, fmt.Errorf("%w: expected three segments", ErrMalformed)
	}
	var payload expiryClaims
	// Only the payload matters; an unknown or missing alg is tolerated.
	if _, _, err := v.parser.ParseUnverified(token, &payload); err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", ErrMalformed)
	}
	return Claims{
		Subject:   payload.subject(),
		ExpiresAt: payload.ExpiresAt.Time,
	}, nil
}

// expiryClaims reads exp and nothing else that can fail; the other
// registered claims may carry any JSON type.
type expiryClaims struct {
	ExpiresAt *jwt.NumericDate `json:"exp"`
	Subject   json.RawMessage  `json:"sub,omitempty"`
}

func (c expiryClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c expiryClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c expiryClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c expiryClaims) GetIssuer() (string, error)                   { return "", nil }
func (c expiryClaims) GetSubject() (string, error)                  { return c.subject(), nil }
func (c expiryClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// subject renders sub as text whether it was sent as a string or a number.
func (c expiryClaims) subject() string {
	raw := strings.TrimSpace(string(c.Subject))
	if raw == "" || raw == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(c.Subject, &text); err == nil {
		return text
	}
	var num json.Number
	if err := json.Unmarshal(c.Subject, &num); err == nil {
		return num.String()
	}
	return ""
}
