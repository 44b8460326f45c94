package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChain answers eth_call by ABI method name. Only the caller half of
// bind.ContractBackend is implemented.
type fakeChain struct {
	bind.ContractBackend

	t       *testing.T
	abi     abi.ABI
	results map[string][]interface{}
	fail    map[string]error
	calls   map[string][]interface{}
}

func newFakeChain(t *testing.T, ab abi.ABI) *fakeChain {
	return &fakeChain{t: t, abi: ab, results: map[string][]interface{}{}, fail: map[string]error{}, calls: map[string][]interface{}{}}
}

func (f *fakeChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeChain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	m, err := f.abi.MethodById(call.Data[:4])
	require.NoError(f.t, err)
	args, err := m.Inputs.Unpack(call.Data[4:])
	require.NoError(f.t, err)
	f.calls[m.Name] = args
	if err := f.fail[m.Name]; err != nil {
		return nil, err
	}
	res, ok := f.results[m.Name]
	require.True(f.t, ok, "unexpected call %s", m.Name)
	return m.Outputs.Pack(res...)
}

var (
	tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	stakeAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	userAddr  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func TestTokenReads(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(t, ERC20())
	chain.results["decimals"] = []interface{}{uint8(6)}
	chain.results["balanceOf"] = []interface{}{big.NewInt(1234)}
	chain.results["allowance"] = []interface{}{big.NewInt(99)}

	tok := NewToken("usdt", tokenAddr, chain, nil)
	assert.Equal(t, "usdt", tok.Name())
	assert.Equal(t, tokenAddr, tok.Address())

	dec, err := tok.Decimals(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), dec)

	bal, err := tok.BalanceOf(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, "1234", bal.String())
	assert.Equal(t, []interface{}{userAddr}, chain.calls["balanceOf"])

	al, err := tok.Allowance(ctx, userAddr, stakeAddr)
	require.NoError(t, err)
	assert.Equal(t, "99", al.String())
	assert.Equal(t, []interface{}{userAddr, stakeAddr}, chain.calls["allowance"])
}

func TestTokenReadError(t *testing.T) {
	chain := newFakeChain(t, ERC20())
	boom := errors.New("connection refused")
	chain.fail["balanceOf"] = boom

	_, err := NewToken("stc", tokenAddr, chain, nil).BalanceOf(context.Background(), userAddr)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stc.balanceOf")
}

func TestApproveWithoutSigner(t *testing.T) {
	_, err := NewToken("usdt", tokenAddr, newFakeChain(t, ERC20()), nil).Approve(context.Background(), stakeAddr, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signer")
}

func TestStakeReads(t *testing.T) {
	ctx := context.Background()
	owner := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	chain := newFakeChain(t, Staking())
	chain.results["owner"] = []interface{}{owner}
	chain.results["stcexPerUsdt"] = []interface{}{big.NewInt(10)}
	chain.results["stcPerStcex"] = []interface{}{big.NewInt(2)}
	chain.results["minStakeSTCEx"] = []interface{}{big.NewInt(100)}
	chain.results["lockSeconds"] = []interface{}{big.NewInt(86400)}
	chain.results["periodSeconds"] = []interface{}{big.NewInt(3600)}
	chain.results["rewardBps"] = []interface{}{big.NewInt(250)}
	chain.results["users"] = []interface{}{big.NewInt(500), big.NewInt(1700000000)}
	chain.results["accruedRewardSTC"] = []interface{}{big.NewInt(42), big.NewInt(3)}
	chain.results["timeUntilUnlock"] = []interface{}{big.NewInt(90061)}
	chain.results["unlockAt"] = []interface{}{big.NewInt(1700090061)}
	chain.results["matured"] = []interface{}{true}

	st := NewStake(stakeAddr, chain, nil)
	assert.Equal(t, stakeAddr, st.Address())

	got, err := st.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	for name, read := range map[string]func(context.Context) (*big.Int, error){
		"10": st.StcexPerUsdt, "2": st.StcPerStcex, "100": st.MinStakeSTCEx,
		"86400": st.LockSeconds, "3600": st.PeriodSeconds, "250": st.RewardBps,
	} {
		v, err := read(ctx)
		require.NoError(t, err)
		assert.Equal(t, name, v.String())
	}

	u, err := st.Users(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, "500", u.StakedSTC.String())
	assert.Equal(t, "1700000000", u.StartTime.String())
	assert.Equal(t, []interface{}{userAddr}, chain.calls["users"])

	acc, err := st.AccruedRewardSTC(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, "42", acc.Reward.String())
	assert.Equal(t, "3", acc.Periods.String())

	left, err := st.TimeUntilUnlock(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, "90061", left.String())

	at, err := st.UnlockAt(ctx, userAddr)
	require.NoError(t, err)
	assert.Equal(t, "1700090061", at.String())

	mat, err := st.Matured(ctx, userAddr)
	require.NoError(t, err)
	assert.True(t, mat)
}

func TestObservedCallerMethod(t *testing.T) {
	c := observedCaller{abi: Staking()}
	assert.Equal(t, "unknown", c.method(nil))
	assert.Equal(t, "unknown", c.method([]byte{1, 2, 3, 4}))
	assert.Equal(t, "matured", c.method(Staking().Methods["matured"].ID))
}

func TestABIMethods(t *testing.T) {
	for _, m := range []string{"decimals", "balanceOf", "allowance", "approve"} {
		assert.Contains(t, ERC20().Methods, m)
	}
	for _, m := range []string{"owner", "stcexPerUsdt", "stcPerStcex", "minStakeSTCEx", "lockSeconds", "periodSeconds", "rewardBps",
		"swapUSDTToSTCEx", "stakeWithSTCEx", "withdrawAllAfterMaturity", "users", "accruedRewardSTC", "timeUntilUnlock", "unlockAt", "matured"} {
		assert.Contains(t, Staking().Methods, m)
	}
}
