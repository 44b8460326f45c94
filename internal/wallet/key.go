package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrWalletNotFound means no private key or keystore was configured.
	ErrWalletNotFound = errors.New("wallet not found (set PRIVATE_KEY or KEYSTORE_PATH)")
	// ErrChainSwitchRejected means the provider could not move to the required chain.
	ErrChainSwitchRejected = errors.New("chain switch rejected")
	// ErrReverted means a transaction was mined with a failed status.
	ErrReverted = errors.New("transaction reverted")
)

// PasswordFunc supplies a keystore password when none is configured.
type PasswordFunc func() (string, error)

// KeySource describes where the signing key comes from.
type KeySource struct {
	PrivateKeyHex string
	KeystorePath  string
	Password      string
	Prompt        PasswordFunc
}

// Parse hex ECDSA private key (with / without 0x).
func hexToECDSAPriv(s string) (*ecdsa.PrivateKey, error) {
	h := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if len(h) == 0 {
		return nil, errors.New("empty private key")
	}
	return gethcrypto.HexToECDSA(h)
}

// LoadKey resolves the signing key. A hex key wins over a keystore.
func LoadKey(src KeySource) (*ecdsa.PrivateKey, error) {
	if strings.TrimSpace(src.PrivateKeyHex) != "" {
		k, err := hexToECDSAPriv(src.PrivateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
		return k, nil
	}
	if strings.TrimSpace(src.KeystorePath) == "" {
		return nil, ErrWalletNotFound
	}
	blob, err := os.ReadFile(src.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	pass := src.Password
	if pass == "" && src.Prompt != nil {
		if pass, err = src.Prompt(); err != nil {
			return nil, fmt.Errorf("keystore password: %w", err)
		}
	}
	key, err := keystore.DecryptKey(blob, pass)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}

// MaskHex shortens secrets and addresses for logs.
func MaskHex(h string) string {
	h = strings.TrimSpace(h)
	if len(h) <= 10 {
		return "***"
	}
	return h[:6] + "…" + h[len(h)-4:]
}
