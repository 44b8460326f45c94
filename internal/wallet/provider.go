package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Provider is a keyed wallet: one signing key and one RPC endpoint, plus an
// optional second endpoint used to honour a chain switch.
type Provider struct {
	mu        sync.RWMutex
	client    *ethclient.Client
	rpcURL    string
	switchURL string
	key       *ecdsa.PrivateKey
}

// Open dials rpcURL and binds it to key. switchURL may be empty.
func Open(ctx context.Context, rpcURL, switchURL string, key *ecdsa.PrivateKey) (*Provider, error) {
	if key == nil {
		return nil, ErrWalletNotFound
	}
	ec, err := dial(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Provider{client: ec, rpcURL: rpcURL, switchURL: strings.TrimSpace(switchURL), key: key}, nil
}

// dial connects with keep-alives and sane timeouts for http endpoints.
func dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if strings.HasPrefix(rpcURL, "http://") || strings.HasPrefix(rpcURL, "https://") {
		transport := &http.Transport{
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		}
		httpClient := &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		}
		rc, err := rpc.DialHTTPWithClient(rpcURL, httpClient)
		if err != nil {
			return nil, err
		}
		return ethclient.NewClient(rc), nil
	}
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(rc), nil
}

func (p *Provider) ec() *ethclient.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// RPCURL is the endpoint currently in use.
func (p *Provider) RPCURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rpcURL
}

// Account is the address of the signing key.
func (p *Provider) Account() common.Address { return gethcrypto.PubkeyToAddress(p.key.PublicKey) }

func (p *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.ec().ChainID(ctx)
}

// SwitchChain moves the provider to the switch endpoint if that endpoint
// serves want. Anything else is a rejection, like a user declining the prompt
// in a browser wallet.
func (p *Provider) SwitchChain(ctx context.Context, want *big.Int) error {
	if p.switchURL == "" {
		return fmt.Errorf("%w: no SWITCH_RPC_URL for chain %s", ErrChainSwitchRejected, want)
	}
	ec, err := dial(ctx, p.switchURL)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrChainSwitchRejected, p.switchURL, err)
	}
	got, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return fmt.Errorf("%w: chain id: %v", ErrChainSwitchRejected, err)
	}
	if got.Cmp(want) != 0 {
		ec.Close()
		return fmt.Errorf("%w: %s serves chain %s, want %s", ErrChainSwitchRejected, p.switchURL, got, want)
	}
	p.mu.Lock()
	old := p.client
	p.client, p.rpcURL = ec, p.switchURL
	p.mu.Unlock()
	old.Close()
	return nil
}

// Signer returns a keyed transactor for the chain the provider is on.
func (p *Provider) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	id, err := p.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return bind.NewKeyedTransactorWithChainID(p.key, id)
}

// Backend is the contract backend for bindings built against this provider.
func (p *Provider) Backend() bind.ContractBackend { return p.ec() }

// WaitMined blocks until tx has a receipt. A failed status is ErrReverted.
func (p *Provider) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	rc, err := bind.WaitMined(ctx, p.ec(), tx)
	if err != nil {
		return nil, err
	}
	if rc.Status != types.ReceiptStatusSuccessful {
		return rc, fmt.Errorf("%w: %s (block %s)", ErrReverted, tx.Hash().Hex(), rc.BlockNumber)
	}
	return rc, nil
}

func (p *Provider) Close() { p.ec().Close() }
