// ABOUTME: Identity provider adapters: static token, persisted anonymous id, Charm account.
// ABOUTME: Each returns an opaque user id used to scope store paths.
package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/charm/client"
	"github.com/google/uuid"
)

// StaticSigner signs in as a fixed, externally issued user id.
type StaticSigner struct {
	UserID string
}

func (s StaticSigner) SignIn(ctx context.Context) (string, error) {
	id := strings.TrimSpace(s.UserID)
	if id == "" {
		return "", fmt.Errorf("no user id configured: %w", ErrNotSignedIn)
	}
	return id, nil
}

func (s StaticSigner) SignOut() error { return nil }

// AnonymousSigner creates a random id on first sign-in and keeps it in Path
// so the same device stays the same user.
type AnonymousSigner struct {
	Path string
}

func (s AnonymousSigner) SignIn(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read anonymous id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(s.Path), 0750); err != nil {
		return "", fmt.Errorf("create identity directory: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write anonymous id: %w", err)
	}
	return id, nil
}

// SignOut keeps the stored id; signing in again resumes the same user.
func (s AnonymousSigner) SignOut() error { return nil }

// CharmSigner uses the Charm account id of this device's SSH key.
type CharmSigner struct{}

func (CharmSigner) SignIn(ctx context.Context) (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

func (CharmSigner) SignOut() error { return nil }
