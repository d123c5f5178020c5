package credential

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("console-test"))
	require.NoError(t, err)
	return token
}

func rawToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestIsValid(t *testing.T) {
	v := NewValidator(WithClock(func() time.Time { return fixedNow }))

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour))}), true},
		{"expired ten seconds ago", signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-10 * time.Second))}), false},
		{"exp equals now", signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedNow)}), false},
		{"missing exp", signed(t, jwt.RegisteredClaims{Subject: "u1"}), false},
		{"empty", "", false},
		{"two segments", "abc.def", false},
		{"garbage payload", "aaa.!!!.bbb", false},
		{"non json payload", rawToken("not json"), false},
		{"string exp", rawToken(`{"exp":"tomorrow"}`), false},
		{"unsigned payload with exp", rawToken(`{"exp":1717246800}`), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.IsValid(tc.token))
		})
	}
}

func TestInspectErrors(t *testing.T) {
	v := NewValidator(WithClock(func() time.Time { return fixedNow }))

	_, err := v.Inspect("nope")
	require.ErrorIs(t, err, ErrMalformed)

	expired := signed(t, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-time.Minute))})
	claims, err := v.Inspect(expired)
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, "u1", claims.Subject)

	valid := signed(t, jwt.RegisteredClaims{Subject: "u2", ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Minute))})
	claims, err = v.Inspect(valid)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestUnknownAlgStillInspectsPayload(t *testing.T) {
	v := NewValidator(WithClock(func() time.Time { return fixedNow }))
	enc := base64.RawURLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"none-such"}`)) + "." + enc.EncodeToString([]byte(`{"exp":1717246800}`)) + "."
	assert.True(t, v.IsValid(token))
}

func TestOnlyExpDecidesValidity(t *testing.T) {
	v := NewValidator(WithClock(func() time.Time { return fixedNow }))

	payloads := map[string]string{
		"numeric sub":      `{"sub":42,"exp":1717246800}`,
		"numeric aud":      `{"aud":7,"exp":1717246800}`,
		"string iat":       `{"iat":"yesterday","exp":1717246800}`,
		"object nbf":       `{"nbf":{"at":1},"exp":1717246800}`,
		"custom role list": `{"role":["admin"],"exp":1717246800}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			_, err := v.Inspect(rawToken(payload))
			assert.NoError(t, err)
		})
	}
}

func TestInspectReadsSubjectBestEffort(t *testing.T) {
	v := NewValidator(WithClock(func() time.Time { return fixedNow }))

	claims, err := v.Inspect(rawToken(`{"sub":42,"exp":1717246800}`))
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)

	claims, err = v.Inspect(rawToken(`{"sub":"u9","exp":1717246800}`))
	require.NoError(t, err)
	assert.Equal(t, "u9", claims.Subject)

	claims, err = v.Inspect(rawToken(`{"sub":{"id":1},"exp":1717246800}`))
	require.NoError(t, err)
	assert.Empty(t, claims.Subject)
}
