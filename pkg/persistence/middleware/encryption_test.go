package middleware_test

import (
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleRun(id string) *domain.TestRun {
	run := &domain.TestRun{
		ID:        id,
		StartedAt: time.Now().UTC(),
		Results: []domain.TestResult{{
			Name:   "refund flow",
			Status: domain.StatusPass,
			Transcript: domain.Transcript{
				{Role: domain.RoleUser, Content: "I want a refund for order 42"},
			},
			NodeTrace: []string{"greeting", "refunds"},
		}},
	}
	run.Seal()
	return run
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	inner := memory.NewStore()
	key := generateKey(t)
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(inner)

	run := sampleRun("enc-run")
	if err := store.Save(t.Context(), run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The inner store only ever sees the envelope.
	envelope, err := inner.Load(t.Context(), "enc-run")
	if err != nil {
		t.Fatalf("underlying load failed: %v", err)
	}
	if len(envelope.Results) != 0 {
		t.Fatalf("expected no plaintext results in storage, found %d", len(envelope.Results))
	}
	if envelope.Encrypted == "" {
		t.Fatal("expected ciphertext envelope in storage")
	}
	if envelope.Passed != 1 {
		t.Errorf("aggregate counters should stay readable, got passed=%d", envelope.Passed)
	}

	loaded, err := store.Load(t.Context(), "enc-run")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if got := loaded.Results[0].Transcript[0].Content; got != "I want a refund for order 42" {
		t.Errorf("decrypted transcript mismatch: %q", got)
	}
	if loaded.Encrypted != "" {
		t.Error("decrypted run should not carry the envelope field")
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(inner)
	if err := oldStore.Save(t.Context(), sampleRun("rotated-run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(inner)

	loaded, err := rotated.Load(t.Context(), "rotated-run")
	if err != nil {
		t.Fatalf("Load with fallback key failed: %v", err)
	}
	if loaded.Results[0].Name != "refund flow" {
		t.Errorf("unexpected decrypted run: %+v", loaded)
	}

	// Without the fallback the old ciphertext is unreadable.
	noFallback := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(inner)
	if _, err := noFallback.Load(t.Context(), "rotated-run"); err == nil {
		t.Fatal("expected decryption failure without the old key")
	}
}

func TestEncryptionMiddleware_ComposesWithPII(t *testing.T) {
	inner := memory.NewStore()
	key := generateKey(t)

	// Redact first, then encrypt what remains.
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(inner)
	store = middleware.NewPIIMiddleware([]string{`order \d+`})(store)

	if err := store.Save(t.Context(), sampleRun("stacked-run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(t.Context(), "stacked-run")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Results[0].Transcript[0].Content; got != "I want a refund for ***" {
		t.Errorf("expected redacted then encrypted content, got %q", got)
	}
}
