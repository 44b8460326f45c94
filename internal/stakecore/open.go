package stakecore

import (
	"context"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/wallet"
)

// KeyedOpener loads the configured key and dials the configured endpoint on
// every connect. prompt is asked for a keystore password when none is set.
func KeyedOpener(cfg config.Settings, prompt wallet.PasswordFunc) OpenFunc {
	return func(ctx context.Context) (Wallet, error) {
		key, err := wallet.LoadKey(wallet.KeySource{
			PrivateKeyHex: cfg.PrivateKeyHex,
			KeystorePath:  cfg.KeystorePath,
			Password:      cfg.KeystorePassword,
			Prompt:        prompt,
		})
		if err != nil {
			return nil, err
		}
		p, err := wallet.Open(ctx, cfg.RPCURL, cfg.SwitchRPCURL, key)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
