package main

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/stake-console/internal/stakecore"
)

const (
	testContract = "0x00000000000000000000000000000000000000aa"
	testKeyHex   = "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
)

func setEnv(t *testing.T) {
	t.Helper()
	color.NoColor = true
	t.Setenv("CONTRACT", testContract)
	t.Setenv("USDT", "0x00000000000000000000000000000000000000b1")
	t.Setenv("STCEX", "0x00000000000000000000000000000000000000b2")
	t.Setenv("STC", "0x00000000000000000000000000000000000000b3")
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("KEYSTORE_PATH", "")
	t.Setenv("KEYSTORE_PASSWORD", "")
	t.Setenv("METRICS_PORT", "0")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String() + errOut.String(), err
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"config", "status", "approve-usdt", "swap", "approve-stcex", "stake", "withdraw", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "rpc", "chain-id", "keystore", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestConfigCommand(t *testing.T) {
	setEnv(t)
	t.Setenv("PRIVATE_KEY", testKeyHex)
	out, err := execute(t, "config", "--chain-id", "97")
	require.NoError(t, err)
	assert.Contains(t, out, "=== CONFIG ===")
	assert.Contains(t, out, "CHAIN_ID          : 97")
	assert.Contains(t, out, "0xb71c…f291")
	assert.NotContains(t, out, testKeyHex)
}

func TestConfigCommandInvalid(t *testing.T) {
	setEnv(t)
	t.Setenv("CONTRACT", "not-an-address")
	out, err := execute(t, "config")
	require.Error(t, err)
	assert.Contains(t, out, "CONTRACT")
}

func TestAmountArgumentRequired(t *testing.T) {
	setEnv(t)
	_, err := execute(t, "swap")
	assert.Error(t, err)
}

func TestStatusWithoutWallet(t *testing.T) {
	setEnv(t)
	out, err := execute(t, "status")
	require.Error(t, err)
	assert.Equal(t, stakecore.KindEnvironment, stakecore.KindOf(err))
	assert.Contains(t, out, "connect failed: wallet not found")
	assert.Contains(t, out, "== Contract ==")
	assert.Contains(t, out, common.HexToAddress(testContract).Hex())
	assert.Contains(t, out, "BNB Smart Chain (56)")
}

func TestPrinter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.Set(stakecore.FieldBalanceUSDT, "12.5")
	p.Set(stakecore.FieldMatured, "NO")
	p.SetStatus(stakecore.LevelPending, "swap… 0xabc")
	p.SetStatus(stakecore.LevelError, "swap failed: boom")
	assert.Contains(t, buf.String(), "… swap… 0xabc\n")
	assert.Contains(t, buf.String(), "✗ swap failed: boom\n")
	assert.NotContains(t, buf.String(), "12.5", "fields wait for snapshot")

	buf.Reset()
	p.snapshot()
	out := buf.String()
	assert.Contains(t, out, "== Wallet ==")
	assert.Contains(t, out, "USDT:                  12.5")
	assert.Contains(t, out, "Withdraw:              disabled")
	assert.NotContains(t, out, "== Contract ==")

	buf.Reset()
	p.follow(true)
	p.Set(stakecore.FieldUnlockCountdown, "00:00:05")
	p.Set(stakecore.FieldUnlockCountdown, "00:00:05")
	p.Set(stakecore.FieldBalanceSTC, "1")
	assert.Equal(t, "\rUnlocks in:            00:00:05\n", buf.String())
}
