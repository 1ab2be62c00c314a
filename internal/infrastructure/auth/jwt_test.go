package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    "user-123",
		Email: "user@example.com",
		Name:  "Maria",
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	got := claims.User()
	if got.ID != user.ID || got.Email != user.Email || got.Name != user.Name {
		t.Fatalf("expected claims to match user, got %+v", got)
	}
	if claims.Subject != user.ID || claims.Issuer != "fintrack" {
		t.Fatalf("unexpected registered claims %+v", claims.RegisteredClaims)
	}
	if manager.TokenDuration() != time.Minute {
		t.Fatalf("unexpected token duration %v", manager.TokenDuration())
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: "expired",
		Email:  "expired@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	valid, err := manager.Generate(&domain.User{ID: "u"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(valid); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected failure for malformed token, got %v", err)
	}

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := manager.Verify(anonymous); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected a token without user to be rejected, got %v", err)
	}
}
