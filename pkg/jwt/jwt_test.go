package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestVerifier(t *testing.T) {
	v, err := NewVerifier("test-secret", "gameshop")
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	t.Run("empty secret rejected", func(t *testing.T) {
		if _, err := NewVerifier("", "gameshop"); err == nil {
			t.Fatal("expected error for empty secret")
		}
	})

	t.Run("sign then validate", func(t *testing.T) {
		token, err := v.Sign("u1", "ash", []string{"player"}, time.Minute)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}

		claims, err := v.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != "u1" || claims.Username != "ash" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if len(claims.Roles) != 1 || claims.Roles[0] != "player" {
			t.Fatalf("unexpected roles: %v", claims.Roles)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token, err := v.Sign("u1", "ash", nil, -time.Minute)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		if _, err := v.Validate(token); !errors.Is(err, ErrExpiredToken) {
			t.Fatalf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other, err := NewVerifier("another-secret", "gameshop")
		if err != nil {
			t.Fatalf("NewVerifier failed: %v", err)
		}
		token, err := other.Sign("u1", "ash", nil, time.Minute)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		if _, err := v.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong issuer rejected", func(t *testing.T) {
		other, err := NewVerifier("test-secret", "someone-else")
		if err != nil {
			t.Fatalf("NewVerifier failed: %v", err)
		}
		token, err := other.Sign("u1", "ash", nil, time.Minute)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		if _, err := v.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		now := time.Now()
		claims := &Claims{
			RegisteredClaims: jwtlib.RegisteredClaims{
				Issuer:    "gameshop",
				Subject:   "u1",
				IssuedAt:  jwtlib.NewNumericDate(now),
				ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Minute)),
			},
			UserID: "u1",
			Type:   "refresh",
		}
		token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("signing failed: %v", err)
		}
		if _, err := v.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := v.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}
