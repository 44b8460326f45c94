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

const stakeName = "stake"

// UserInfo is the users(address) record.
type UserInfo struct {
	StakedSTC *big.Int
	StartTime *big.Int
}

// Accrued is the accruedRewardSTC(address) result.
type Accrued struct {
	Reward  *big.Int
	Periods *big.Int
}

// Stake binds the staking contract.
type Stake struct {
	address  common.Address
	contract *bind.BoundContract
	signer   *bind.TransactOpts
}

// NewStake binds the staking contract at addr. signer may be nil for read-only use.
func NewStake(addr common.Address, backend bind.ContractBackend, signer *bind.TransactOpts) *Stake {
	caller := observedCaller{inner: backend, abi: stakeABI, contract: stakeName}
	return &Stake{
		address:  addr,
		contract: bind.NewBoundContract(addr, stakeABI, caller, backend, backend),
		signer:   signer,
	}
}

func (s *Stake) Address() common.Address { return s.address }

// Owner reads owner().
func (s *Stake) Owner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "owner"); err != nil {
		return common.Address{}, fmt.Errorf("stake.owner: %w", err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// StcexPerUsdt reads the USDT to STCEx swap rate as a raw integer.
func (s *Stake) StcexPerUsdt(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "stcexPerUsdt")
}

// StcPerStcex reads the STCEx to STC rate as a raw integer.
func (s *Stake) StcPerStcex(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "stcPerStcex")
}

// MinStakeSTCEx reads the minimum stake in STCEx base units.
func (s *Stake) MinStakeSTCEx(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "minStakeSTCEx")
}

// LockSeconds reads the lock duration.
func (s *Stake) LockSeconds(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "lockSeconds")
}

// PeriodSeconds reads the length of one reward period.
func (s *Stake) PeriodSeconds(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "periodSeconds")
}

// RewardBps reads the reward per period in basis points.
func (s *Stake) RewardBps(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "rewardBps")
}

// Users reads the stake record of user.
func (s *Stake) Users(ctx context.Context, user common.Address) (UserInfo, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "users", user); err != nil {
		return UserInfo{}, fmt.Errorf("stake.users: %w", err)
	}
	return UserInfo{
		StakedSTC: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		StartTime: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
	}, nil
}

// AccruedRewardSTC reads the reward accrued so far and the periods it covers.
func (s *Stake) AccruedRewardSTC(ctx context.Context, user common.Address) (Accrued, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "accruedRewardSTC", user); err != nil {
		return Accrued{}, fmt.Errorf("stake.accruedRewardSTC: %w", err)
	}
	return Accrued{
		Reward:  *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Periods: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
	}, nil
}

// TimeUntilUnlock reads the seconds left before user can withdraw.
func (s *Stake) TimeUntilUnlock(ctx context.Context, user common.Address) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "timeUntilUnlock", user)
}

// UnlockAt reads the unix time at which the stake of user unlocks.
func (s *Stake) UnlockAt(ctx context.Context, user common.Address) (*big.Int, error) {
	return callUint(ctx, s.contract, stakeName, "unlockAt", user)
}

// Matured reports whether the stake of user can be withdrawn.
func (s *Stake) Matured(ctx context.Context, user common.Address) (bool, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "matured", user); err != nil {
		return false, fmt.Errorf("stake.matured: %w", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// SwapUSDTToSTCEx submits swapUSDTToSTCEx(usdtAmount) and returns without waiting.
func (s *Stake) SwapUSDTToSTCEx(ctx context.Context, usdtAmount *big.Int) (*types.Transaction, error) {
	return transact(ctx, s.contract, s.signer, stakeName, "swapUSDTToSTCEx", usdtAmount)
}

// StakeWithSTCEx submits stakeWithSTCEx(stcexAmount) and returns without waiting.
func (s *Stake) StakeWithSTCEx(ctx context.Context, stcexAmount *big.Int) (*types.Transaction, error) {
	return transact(ctx, s.contract, s.signer, stakeName, "stakeWithSTCEx", stcexAmount)
}

// WithdrawAllAfterMaturity submits withdrawAllAfterMaturity() and returns without waiting.
func (s *Stake) WithdrawAllAfterMaturity(ctx context.Context) (*types.Transaction, error) {
	return transact(ctx, s.contract, s.signer, stakeName, "withdrawAllAfterMaturity")
}
