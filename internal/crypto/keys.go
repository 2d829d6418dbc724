// Package crypto decrypts the BMD container variants.
package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey is returned when an encrypted file needs a key that was not
// configured.
var ErrMissingKey = errors.New("crypto: key not configured")

// Keys holds the cipher keys for encrypted BMD versions. They are supplied
// through configuration and never embedded.
type Keys struct {
	XOR    [16]byte
	LEA    [32]byte
	HasXOR bool
	HasLEA bool
}

// ParseKeys decodes hex-encoded keys. Empty strings leave the key unset.
func ParseKeys(xorHex, leaHex string) (Keys, error) {
	var k Keys
	if xorHex != "" {
		if err := decodeKey(k.XOR[:], xorHex); err != nil {
			return Keys{}, fmt.Errorf("crypto: xor key: %w", err)
		}
		k.HasXOR = true
	}
	if leaHex != "" {
		if err := decodeKey(k.LEA[:], leaHex); err != nil {
			return Keys{}, fmt.Errorf("crypto: lea key: %w", err)
		}
		k.HasLEA = true
	}
	return k, nil
}

func decodeKey(dst []byte, s string) error {
	s = strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(strings.TrimSpace(s))
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("want %d bytes, got %d", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}
