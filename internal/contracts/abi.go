package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC20ABI covers the token calls the console needs.
const ERC20ABI = `[
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// StakeABI is the STCEx staking contract surface.
const StakeABI = `[
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"stcexPerUsdt","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"stcPerStcex","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minStakeSTCEx","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"lockSeconds","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"periodSeconds","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"rewardBps","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},

  {"type":"function","name":"swapUSDTToSTCEx","stateMutability":"nonpayable","inputs":[{"name":"usdtAmount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"stakeWithSTCEx","stateMutability":"nonpayable","inputs":[{"name":"stcexAmount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawAllAfterMaturity","stateMutability":"nonpayable","inputs":[],"outputs":[]},

  {"type":"function","name":"users","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"stakedSTC","type":"uint256"},{"name":"startTime","type":"uint256"}]},
  {"type":"function","name":"accruedRewardSTC","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"reward","type":"uint256"},{"name":"periods","type":"uint256"}]},
  {"type":"function","name":"timeUntilUnlock","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"unlockAt","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"matured","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	erc20ABI abi.ABI
	stakeABI abi.ABI
)

func init() {
	erc20ABI = mustParse(ERC20ABI)
	stakeABI = mustParse(StakeABI)
}

func mustParse(s string) abi.ABI {
	ab, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("contracts: bad abi: " + err.Error())
	}
	return ab
}

// ERC20 returns the parsed token ABI.
func ERC20() abi.ABI { return erc20ABI }

// Staking returns the parsed stake contract ABI.
func Staking() abi.ABI { return stakeABI }
