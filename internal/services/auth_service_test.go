package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newAuthService(t *testing.T, name string) *AuthService {
	t.Helper()
	return &AuthService{
		DB:       newServiceDB(t, name),
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	}
}

func TestAuth_SignupLoginRoundtrip(t *testing.T) {
	svc := newAuthService(t, "auth_roundtrip")
	ctx := context.Background()

	u, token, err := svc.Signup(ctx, "Marie@Example.com", "correct-horse", "Marie")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Email != "marie@example.com" {
		t.Fatalf("Email = %q; want lowercased", u.Email)
	}
	if token == "" {
		t.Fatal("Signup returned empty token")
	}

	uid, err := svc.VerifyToken(token)
	if err != nil || uid != u.ID {
		t.Fatalf("VerifyToken = %q, %v; want %q", uid, err, u.ID)
	}

	logged, _, err := svc.Login(ctx, "marie@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != u.ID {
		t.Fatalf("Login user = %s; want %s", logged.ID, u.ID)
	}
}

func TestAuth_LoginFailuresIndistinguishable(t *testing.T) {
	svc := newAuthService(t, "auth_failures")
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "marie@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, _, wrongPass := svc.Login(ctx, "marie@example.com", "wrong")
	_, _, unknownUser := svc.Login(ctx, "nobody@example.com", "correct-horse")

	if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("wrongPass = %v, unknownUser = %v; both must be ErrInvalidCredentials", wrongPass, unknownUser)
	}
}

func TestAuth_DuplicateEmailRejected(t *testing.T) {
	svc := newAuthService(t, "auth_dup")
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "marie@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, "MARIE@example.com", "other-password", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v; want ErrEmailTaken", err)
	}
}

func TestAuth_WeakPasswordRejected(t *testing.T) {
	svc := newAuthService(t, "auth_weak")

	_, _, err := svc.Signup(context.Background(), "marie@example.com", "short", "")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v; want ErrWeakPassword", err)
	}
}

func TestAuth_TamperedTokenRejected(t *testing.T) {
	svc := newAuthService(t, "auth_tamper")

	_, token, err := svc.Signup(context.Background(), "marie@example.com", "correct-horse", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	other := &AuthService{DB: svc.DB, Secret: []byte("different-secret"), TokenTTL: time.Hour}
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials for wrong secret", err)
	}
	if _, err := svc.VerifyToken(token + "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials for tampered token", err)
	}
}

func TestAuth_ExpiredTokenRejected(t *testing.T) {
	svc := newAuthService(t, "auth_expired")
	svc.TokenTTL = -time.Minute // already expired at issue time

	_, token, err := svc.Signup(context.Background(), "marie@example.com", "correct-horse", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials for expired token", err)
	}
}
