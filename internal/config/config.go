package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/pkg/types"
)

// Config represents the complete client configuration
type Config struct {
	Network    NetworkConfig    `yaml:"network"`
	Contracts  ContractsConfig  `yaml:"contracts"`
	Wallet     WalletConfig     `yaml:"wallet"`
	Accounting AccountingConfig `yaml:"accounting"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// NetworkConfig describes the single target network and the public
// read-only endpoint used before a wallet is connected.
type NetworkConfig struct {
	RPCURL     string `yaml:"rpc_url"`
	WSEndpoint string `yaml:"ws_endpoint"` // optional, enables event subscriptions
	ChainID    int64  `yaml:"chain_id"`

	// Chain metadata forwarded verbatim to wallet_addEthereumChain when
	// the wallet does not know the chain.
	ChainName      string `yaml:"chain_name"`
	NativeCurrency string `yaml:"native_currency"`
	NativeDecimals int    `yaml:"native_decimals"`
	ExplorerURL    string `yaml:"explorer_url"`

	// Public endpoint rate limiting; dashboard polling must not hammer
	// the fallback RPC.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// ContractsConfig is the deployed-contract address table.
type ContractsConfig struct {
	Token     string `yaml:"token"`
	Staking   string `yaml:"staking"`
	Rewards   string `yaml:"rewards"`
	Booster   string `yaml:"booster"`
	Sale      string `yaml:"sale"`
	Game      string `yaml:"game"`
	Faucet    string `yaml:"faucet"` // optional deployment
	Notary    string `yaml:"notary"` // optional deployment
	Ecosystem string `yaml:"ecosystem"`
}

// WalletConfig selects and configures the wallet provider.
type WalletConfig struct {
	// BridgeURL is the websocket pairing endpoint for an external
	// wallet session. Empty selects the local keystore provider.
	BridgeURL string `yaml:"bridge_url"`

	// KeyringService / KeyName locate the signing key in the platform
	// keyring for the local keystore provider.
	KeyringService string `yaml:"keyring_service"`
	KeyName        string `yaml:"key_name"`
}

// AccountingConfig tunes the reward and fee accounting engine.
type AccountingConfig struct {
	// ApprovalToleranceBips is the buffer added on top of a required
	// approval amount so minor drift between quote and execution does
	// not force a second approval transaction.
	ApprovalToleranceBips int64 `yaml:"approval_tolerance_bips"`

	// RefreshDelaySecs is how long after a confirmed transaction the
	// account figures are re-read, allowing node state to propagate.
	RefreshDelaySecs int `yaml:"refresh_delay_secs"`

	// Fallback fee rules used until the ecosystem registry has been
	// read successfully.
	DefaultClaimFeeBips int64   `yaml:"default_claim_fee_bips"`
	DefaultDiscountBips []int64 `yaml:"default_discount_bips"` // indexed by booster tier
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			RPCURL:         "https://arb1.arbitrum.io/rpc",
			ChainID:        42161,
			ChainName:      "Arbitrum One",
			NativeCurrency: "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://arbiscan.io",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Wallet: WalletConfig{
			KeyringService: "backchain",
			KeyName:        "signer",
		},
		Accounting: AccountingConfig{
			ApprovalToleranceBips: 100,
			RefreshDelaySecs:      4,
			DefaultClaimFeeBips:   2000,
			DefaultDiscountBips:   []int64{0, 250, 500, 1000, 2000},
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9480",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".backchain", "config.yaml")
}

// Load reads a config file, layered over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, chainerr.New(chainerr.Config, "config.load",
			fmt.Errorf("malformed config %s: %w", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for defects that would make the
// client misbehave. Address-table defects are fatal ConfigurationErrors,
// not recoverable network conditions.
func (c *Config) Validate() error {
	if c.Network.RPCURL == "" {
		return chainerr.Newf(chainerr.Config, "config.validate", "network.rpc_url is required")
	}
	if c.Network.ChainID <= 0 {
		return chainerr.Newf(chainerr.Config, "config.validate", "network.chain_id must be positive, got %d", c.Network.ChainID)
	}

	for _, name := range types.CoreContracts {
		addr := c.Contracts.address(name)
		if addr == "" {
			return chainerr.Newf(chainerr.Config, "config.validate", "contracts.%s address is required", name)
		}
		if !common.IsHexAddress(addr) {
			return chainerr.Newf(chainerr.Config, "config.validate", "contracts.%s address %q is not a valid address", name, addr)
		}
		if common.HexToAddress(addr) == (common.Address{}) {
			return chainerr.Newf(chainerr.Config, "config.validate", "contracts.%s address must not be the zero address", name)
		}
	}
	for _, name := range types.OptionalContracts {
		addr := c.Contracts.address(name)
		if addr != "" && !common.IsHexAddress(addr) {
			return chainerr.Newf(chainerr.Config, "config.validate", "contracts.%s address %q is not a valid address", name, addr)
		}
	}

	if c.Accounting.ApprovalToleranceBips < 0 {
		return chainerr.Newf(chainerr.Config, "config.validate", "accounting.approval_tolerance_bips must not be negative")
	}
	if c.Accounting.DefaultClaimFeeBips < 0 || c.Accounting.DefaultClaimFeeBips > types.BipsDenominator {
		return chainerr.Newf(chainerr.Config, "config.validate", "accounting.default_claim_fee_bips must be within [0, %d]", types.BipsDenominator)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return chainerr.Newf(chainerr.Config, "config.validate", "log.format must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// address returns the configured address string for a logical name.
func (c *ContractsConfig) address(name types.ContractName) string {
	switch name {
	case types.ContractToken:
		return c.Token
	case types.ContractStaking:
		return c.Staking
	case types.ContractRewards:
		return c.Rewards
	case types.ContractBooster:
		return c.Booster
	case types.ContractSale:
		return c.Sale
	case types.ContractGame:
		return c.Game
	case types.ContractFaucet:
		return c.Faucet
	case types.ContractNotary:
		return c.Notary
	case types.ContractEcosystem:
		return c.Ecosystem
	default:
		return ""
	}
}

// Address resolves a logical contract name to its deployed address.
// The second return is false when the contract is not configured
// (legitimate only for optional contracts).
func (c *ContractsConfig) Address(name types.ContractName) (common.Address, bool) {
	raw := c.address(name)
	if raw == "" {
		return common.Address{}, false
	}
	addr := common.HexToAddress(raw)
	if addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}
