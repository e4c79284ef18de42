// ABOUTME: Tests for the identity session and local signers.
// ABOUTME: Checks sign-in gating, listener notification and anonymous id persistence.
package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type countingSigner struct {
	id    string
	calls int
}

func (c *countingSigner) SignIn(ctx context.Context) (string, error) {
	c.calls++
	return c.id, nil
}

func (c *countingSigner) SignOut() error { return nil }

func TestEnsureSignedInOnce(t *testing.T) {
	signer := &countingSigner{id: "u1"}
	s := NewSession(signer)

	if _, ok := s.CurrentUserID(); ok {
		t.Fatal("new session should be signed out")
	}
	for i := 0; i < 3; i++ {
		id, err := s.EnsureSignedIn(context.Background())
		if err != nil || id != "u1" {
			t.Fatalf("EnsureSignedIn() = %q, %v", id, err)
		}
	}
	if signer.calls != 1 {
		t.Errorf("signer called %d times, want 1", signer.calls)
	}
}

func TestOnAuthChange(t *testing.T) {
	s := NewSession(&countingSigner{id: "u1"})

	var seen []string
	unsubscribe := s.OnAuthChange(func(id string) { seen = append(seen, id) })

	_, _ = s.EnsureSignedIn(context.Background())
	_ = s.SignOut()
	unsubscribe()
	_, _ = s.EnsureSignedIn(context.Background())

	want := []string{"", "u1", ""}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestStaticSignerRequiresID(t *testing.T) {
	s := NewSession(StaticSigner{})
	_, err := s.EnsureSignedIn(context.Background())
	if !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestAnonymousSignerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity", "anonymous-id")

	first, err := AnonymousSigner{Path: path}.SignIn(context.Background())
	if err != nil {
		t.Fatalf("first SignIn failed: %v", err)
	}
	second, err := AnonymousSigner{Path: path}.SignIn(context.Background())
	if err != nil {
		t.Fatalf("second SignIn failed: %v", err)
	}
	if first == "" || first != second {
		t.Errorf("ids differ: %q vs %q", first, second)
	}
}
