package contracts

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ligun0805/stake-console/internal/metrics"
)

// observedCaller times every eth_call and labels it with the ABI method the
// selector resolves to.
type observedCaller struct {
	inner    bind.ContractCaller
	abi      abi.ABI
	contract string
}

func (c observedCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return c.inner.CodeAt(ctx, contract, blockNumber)
}

func (c observedCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	out, err := c.inner.CallContract(ctx, call, blockNumber)
	metrics.ObserveRead(c.contract, c.method(call.Data), start, err)
	return out, err
}

func (c observedCaller) method(data []byte) string {
	if len(data) < 4 {
		return "unknown"
	}
	m, err := c.abi.MethodById(data[:4])
	if err != nil {
		return "unknown"
	}
	return m.Name
}
