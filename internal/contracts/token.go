package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token is an ERC-20 binding whose writes are signed by one fixed signer.
type Token struct {
	name     string
	address  common.Address
	contract *bind.BoundContract
	signer   *bind.TransactOpts
}

// NewToken binds the ERC-20 at addr. name only labels metrics and errors.
func NewToken(name string, addr common.Address, backend bind.ContractBackend, signer *bind.TransactOpts) *Token {
	caller := observedCaller{inner: backend, abi: erc20ABI, contract: name}
	return &Token{
		name:     name,
		address:  addr,
		contract: bind.NewBoundContract(addr, erc20ABI, caller, backend, backend),
		signer:   signer,
	}
}

func (t *Token) Name() string { return t.name }

func (t *Token) Address() common.Address { return t.address }

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("%s.decimals: %w", t.name, err)
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return callUint(ctx, t.contract, t.name, "balanceOf", owner)
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return callUint(ctx, t.contract, t.name, "allowance", owner, spender)
}

// Approve submits approve(spender, amount) and returns without waiting.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return transact(ctx, t.contract, t.signer, t.name, "approve", spender, amount)
}

func callUint(ctx context.Context, c *bind.BoundContract, name, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := c.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", name, method, err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func transact(ctx context.Context, c *bind.BoundContract, signer *bind.TransactOpts, name, method string, args ...interface{}) (*types.Transaction, error) {
	if signer == nil {
		return nil, fmt.Errorf("%s.%s: no signer", name, method)
	}
	opts := *signer
	opts.Context = ctx
	tx, err := c.Transact(&opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", name, method, err)
	}
	return tx, nil
}
