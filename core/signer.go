package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// HMACSigner computes a hex-encoded HMAC-SHA256 over the raw payload bytes.
// The signature must be computed over the exact bytes transmitted so the
// receiver's independent recomputation matches; callers always sign the
// stored payload, never a re-serialization.
type HMACSigner struct {
	Secret string
}

func (s HMACSigner) Signature(payload []byte) (string, error) {
	secret := strings.TrimSpace(s.Secret)
	if secret == "" {
		return "", fmt.Errorf("core: signing secret is required")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature is the receiving half of the signing contract, used by
// endpoint implementations and tests to check a signature header against the
// payload bytes as delivered.
func VerifySignature(secret string, payload []byte, signatureHex string) error {
	signatureHex = strings.TrimSpace(signatureHex)
	if signatureHex == "" {
		return fmt.Errorf("core: signature is required")
	}
	expected, err := HMACSigner{Secret: secret}.Signature(payload)
	if err != nil {
		return err
	}
	decoded, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("core: decode hex signature: %w", err)
	}
	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(decoded, expectedRaw) != 1 {
		return fmt.Errorf("core: signature verification failed")
	}
	return nil
}

var _ Signer = HMACSigner{}
