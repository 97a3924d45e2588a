package domain

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidMintAddress reports whether s decodes as a 32-byte base58 Solana
// address. Mint accounts may live off-curve, so no curve check is applied.
func ValidMintAddress(s string) bool {
	if s == "" {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == 32
}

// ValidWalletAddress reports whether s is a 32-byte base58 address whose
// bytes decode to a point on the ed25519 curve. Wallet addresses are
// ed25519 public keys and must be on-curve.
func ValidWalletAddress(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
