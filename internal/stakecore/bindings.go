package stakecore

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/contracts"
)

// Token is the ERC-20 surface used by the workflow.
type Token interface {
	Name() string
	Address() common.Address
	Decimals(ctx context.Context) (uint8, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// Staking is the stake contract surface used by the workflow.
type Staking interface {
	Address() common.Address
	Owner(ctx context.Context) (common.Address, error)
	StcexPerUsdt(ctx context.Context) (*big.Int, error)
	StcPerStcex(ctx context.Context) (*big.Int, error)
	MinStakeSTCEx(ctx context.Context) (*big.Int, error)
	LockSeconds(ctx context.Context) (*big.Int, error)
	PeriodSeconds(ctx context.Context) (*big.Int, error)
	RewardBps(ctx context.Context) (*big.Int, error)
	Users(ctx context.Context, user common.Address) (contracts.UserInfo, error)
	AccruedRewardSTC(ctx context.Context, user common.Address) (contracts.Accrued, error)
	TimeUntilUnlock(ctx context.Context, user common.Address) (*big.Int, error)
	UnlockAt(ctx context.Context, user common.Address) (*big.Int, error)
	Matured(ctx context.Context, user common.Address) (bool, error)
	SwapUSDTToSTCEx(ctx context.Context, usdtAmount *big.Int) (*types.Transaction, error)
	StakeWithSTCEx(ctx context.Context, stcexAmount *big.Int) (*types.Transaction, error)
	WithdrawAllAfterMaturity(ctx context.Context) (*types.Transaction, error)
}

// Bindings are the four contract handles of a session.
type Bindings struct {
	USDT  Token
	STCEx Token
	STC   Token
	Stake Staking
}

// Binder builds the bindings for a session.
type Binder func(addrs config.Addresses, backend bind.ContractBackend, signer *bind.TransactOpts) Bindings

// ContractBinder binds the real ABIs against backend.
func ContractBinder(addrs config.Addresses, backend bind.ContractBackend, signer *bind.TransactOpts) Bindings {
	return Bindings{
		USDT:  contracts.NewToken("USDT", addrs.USDT, backend, signer),
		STCEx: contracts.NewToken("STCEx", addrs.STCEx, backend, signer),
		STC:   contracts.NewToken("STC", addrs.STC, backend, signer),
		Stake: contracts.NewStake(addrs.Stake, backend, signer),
	}
}
