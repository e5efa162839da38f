package core

import (
	"strings"
	"testing"
)

func TestHMACSigner_DeterministicHexSignature(t *testing.T) {
	signer := HMACSigner{Secret: "shhh"}
	payload := []byte(`{"event":"invoice.paid"}`)

	first, err := signer.Signature(payload)
	if err != nil {
		t.Fatalf("sign payload: %v", err)
	}
	second, err := signer.Signature(payload)
	if err != nil {
		t.Fatalf("sign payload again: %v", err)
	}
	if first != second {
		t.Fatalf("expected deterministic signature, got %q then %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars for sha256, got %d", len(first))
	}
	if first != strings.ToLower(first) {
		t.Fatalf("expected lowercase hex signature, got %q", first)
	}

	if err := VerifySignature("shhh", payload, first); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}

func TestHMACSigner_SingleByteChangesSignature(t *testing.T) {
	signer := HMACSigner{Secret: "shhh"}
	payload := []byte(`{"event":"invoice.paid"}`)

	original, err := signer.Signature(payload)
	if err != nil {
		t.Fatalf("sign payload: %v", err)
	}

	mutated := append([]byte(nil), payload...)
	mutated[len(mutated)-2] ^= 0x01
	changed, err := signer.Signature(mutated)
	if err != nil {
		t.Fatalf("sign mutated payload: %v", err)
	}
	if changed == original {
		t.Fatalf("expected signature to change with payload")
	}
	if err := VerifySignature("shhh", mutated, original); err == nil {
		t.Fatalf("expected verification failure for mutated payload")
	}
}

func TestHMACSigner_RequiresSecret(t *testing.T) {
	if _, err := (HMACSigner{}).Signature([]byte("payload")); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := (HMACSigner{Secret: "   "}).Signature([]byte("payload")); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}

func TestVerifySignature_RejectsGarbage(t *testing.T) {
	payload := []byte("payload")
	if err := VerifySignature("shhh", payload, ""); err == nil {
		t.Fatalf("expected error for empty signature")
	}
	if err := VerifySignature("shhh", payload, "not-hex"); err == nil {
		t.Fatalf("expected error for non-hex signature")
	}
	if err := VerifySignature("shhh", payload, "deadbeef"); err == nil {
		t.Fatalf("expected error for wrong signature")
	}
}
