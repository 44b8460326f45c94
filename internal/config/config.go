package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings keeps all configuration options.
// Field names mirror the env keys (RPC_URL -> RPCURL and so on).
type Settings struct {
	RPCURL       string `mapstructure:"rpc_url" validate:"required,url"`
	SwitchRPCURL string `mapstructure:"switch_rpc_url" validate:"omitempty,url"`
	ChainID      int64  `mapstructure:"chain_id" validate:"gt=0"`
	ChainName    string `mapstructure:"chain_name" validate:"required"`
	Explorer     string `mapstructure:"explorer" validate:"required,url"`

	Contract string `mapstructure:"contract" validate:"required,hexaddr"`
	USDT     string `mapstructure:"usdt" validate:"required,hexaddr"`
	STCEx    string `mapstructure:"stcex" validate:"required,hexaddr"`
	STC      string `mapstructure:"stc" validate:"required,hexaddr"`

	PrivateKeyHex    string `mapstructure:"private_key"`
	KeystorePath     string `mapstructure:"keystore_path"`
	KeystorePassword string `mapstructure:"keystore_password"`

	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	Timezone     string        `mapstructure:"timezone"`

	LogLevel    string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat   string `mapstructure:"log_format" validate:"oneof=console json"`
	MetricsPort int    `mapstructure:"metrics_port" validate:"gte=0,lte=65535"`
}

// Addresses groups the four fixed contract addresses.
type Addresses struct {
	Stake common.Address
	USDT  common.Address
	STCEx common.Address
	STC   common.Address
}

var defaults = map[string]any{
	"rpc_url":       "https://bsc-dataseed.bnbchain.org",
	"chain_id":      56,
	"chain_name":    "BNB Smart Chain",
	"explorer":      "https://bscscan.com",
	"tick_interval": time.Second,
	"timezone":      "Local",
	"log_level":     "info",
	"log_format":    "console",
	"metrics_port":  0,
}

// Load reads settings from (in order of precedence) bound flags, the
// environment, the optional config file and the built-in defaults.
// Env keys are the upper-case setting names: RPC_URL, CHAIN_ID, CONTRACT ...
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range []string{"switch_rpc_url", "contract", "usdt", "stcex", "stc", "private_key", "keystore_path", "keystore_password"} {
		v.SetDefault(k, "")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if flags != nil {
		bindFlag(v, flags, "rpc_url", "rpc")
		bindFlag(v, flags, "chain_id", "chain-id")
		bindFlag(v, flags, "keystore_path", "keystore")
		bindFlag(v, flags, "log_level", "log-level")
	}

	var st Settings
	if err := v.Unmarshal(&st); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	st.normalize()
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}
	return st, nil
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

func (st *Settings) normalize() {
	st.RPCURL = strings.TrimSpace(st.RPCURL)
	st.SwitchRPCURL = strings.TrimSpace(st.SwitchRPCURL)
	st.Explorer = strings.TrimRight(strings.TrimSpace(st.Explorer), "/")
	st.Contract = strings.TrimSpace(st.Contract)
	st.USDT = strings.TrimSpace(st.USDT)
	st.STCEx = strings.TrimSpace(st.STCEx)
	st.STC = strings.TrimSpace(st.STC)
	st.PrivateKeyHex = strings.TrimSpace(st.PrivateKeyHex)
	st.KeystorePath = strings.TrimSpace(st.KeystorePath)
	st.LogLevel = strings.ToLower(strings.TrimSpace(st.LogLevel))
	st.LogFormat = strings.ToLower(strings.TrimSpace(st.LogFormat))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hexaddr", func(fl validator.FieldLevel) bool {
		return common.IsHexAddress(fl.Field().String())
	})
	return v
}

// Validate checks field constraints and reports every violation at once.
func (st Settings) Validate() error {
	err := validate.Struct(st)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.ToUpper(fieldKey(fe.StructField())), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

var fieldKeys = map[string]string{
	"RPCURL": "rpc_url", "SwitchRPCURL": "switch_rpc_url", "ChainID": "chain_id", "ChainName": "chain_name",
	"Explorer": "explorer", "Contract": "contract", "USDT": "usdt", "STCEx": "stcex", "STC": "stc",
	"TickInterval": "tick_interval", "LogLevel": "log_level", "LogFormat": "log_format", "MetricsPort": "metrics_port",
}

func fieldKey(field string) string {
	if k, ok := fieldKeys[field]; ok {
		return k
	}
	return field
}

// Addresses returns the parsed contract addresses. Validate must have passed.
func (st Settings) Addresses() Addresses {
	return Addresses{
		Stake: common.HexToAddress(st.Contract),
		USDT:  common.HexToAddress(st.USDT),
		STCEx: common.HexToAddress(st.STCEx),
		STC:   common.HexToAddress(st.STC),
	}
}

// RequiredChainID returns CHAIN_ID as a big.Int.
func (st Settings) RequiredChainID() *big.Int { return big.NewInt(st.ChainID) }

// Location resolves TIMEZONE, falling back to the local zone.
func (st Settings) Location() *time.Location {
	tz := strings.TrimSpace(st.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// HasWallet reports whether any signing key material is configured.
func (st Settings) HasWallet() bool { return st.PrivateKeyHex != "" || st.KeystorePath != "" }
