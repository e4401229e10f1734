package middleware_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/complog/pkg/adapters/memory"
	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{`token=\w+`, `[\w.]+@[\w.]+`})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	doc := []byte(sampleDoc)
	if err := mw(underlyingStore).Save(ctx, "pii", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(string(doc), "alice@example.com") {
		t.Error("Middleware modified the caller's document")
	}

	stored, err := underlyingStore.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	parsed, err := domain.ParseDocument(stored)
	if err != nil {
		t.Fatal(err)
	}
	if got := parsed.Logs[0].Text; got != "*** for ***" {
		t.Errorf("Expected masked text, got: %q", got)
	}
	if !strings.Contains(string(stored), "\n    \"logs\": [") {
		t.Errorf("Expected document layout to be preserved, got: %s", stored)
	}
}

func TestPIIMiddleware_Chain(t *testing.T) {
	underlyingStore := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{`alice`})
	if err != nil {
		t.Fatal(err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlyingStore, pii, enc)
	ctx := context.Background()

	if err := store.Save(ctx, "s", []byte(sampleDoc)); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(loaded), "alice") || !strings.Contains(string(loaded), "***@example.com") {
		t.Errorf("Expected redacted then decrypted document, got: %s", loaded)
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestPIIMiddleware_RejectsNonDocument(t *testing.T) {
	mw, _ := middleware.NewPIIMiddleware(nil)
	if err := mw(memory.NewStore()).Save(context.Background(), "x", []byte("not json")); err == nil {
		t.Error("Expected error for malformed document")
	}
}
