package identity

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, exp, err := tm.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if exp.IsZero() {
		t.Fatalf("expiry not set")
	}

	userID, err := tm.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("user id = %q", userID)
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	if _, err := tm.Resolve("not.a.token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Resolve(token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}
