package cmn

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const VERSION = "0.2.0"
const CONFIG_NAME = "lptracker.yaml"

var AppName = "lptracker"

type SRetry struct {
	MaxAttempts  int           `yaml:"max_attempts"`  // attempts per remote read, first one included
	InitialDelay time.Duration `yaml:"initial_delay"` // delay before the first retry
	MaxDelay     time.Duration `yaml:"max_delay"`     // upper bound for the delay
	Multiplier   float64       `yaml:"multiplier"`    // 1 = fixed delay
}

type SConfig struct {
	Verbosity       string        `yaml:"verbosity"`         // log verbosity
	LogFile         string        `yaml:"log_file"`          // optional log file, relative to data folder
	DataFolder      string        `yaml:"data_folder"`       // state files location
	PositionsFile   string        `yaml:"positions_file"`    // flat file naming the active position
	FeesFile        string        `yaml:"fees_file"`         // position history document
	TicksFile       string        `yaml:"ticks_file"`        // price tick series
	RPC_URL         string        `yaml:"rpc_url"`           // EVM JSON-RPC endpoint
	WalletAddress   string        `yaml:"wallet_address"`    // owner of the position, used for the collect simulation
	ChainId         int           `yaml:"chain_id"`          // EVM chain id
	PositionManager string        `yaml:"position_manager"`  // NFPM address, defaults to the predefined one
	Pool            string        `yaml:"pool"`              // pool override, derived through the factory when empty
	DefaultBase     string        `yaml:"default_base"`      // token0 or token1
	RetentionDays   int           `yaml:"retention_days"`    // price tick retention
	RangeWindow     time.Duration `yaml:"range_window"`      // time in range lookback
	RPCRate         float64       `yaml:"rpc_rate"`          // RPC calls per second
	RequestTimeout  time.Duration `yaml:"request_timeout"`   // per call timeout
	Retry           SRetry        `yaml:"retry"`             // remote read retry policy
	PriceFeeders    []string      `yaml:"price_feeders"`     // ordered list: coingecko, dexscreener
	CoinGeckoURL    string        `yaml:"coingecko_url"`     // CoinGecko API root
	CoinGeckoAPIKey string        `yaml:"coingecko_api_key"` // optional demo/pro key
	DexScreenerURL  string        `yaml:"dexscreener_url"`   // DexScreener API root
}

func DefaultConfig() *SConfig {
	return &SConfig{
		Verbosity:      "info",
		PositionsFile:  "positions_to_track.txt",
		FeesFile:       "fees_data.json",
		TicksFile:      "price_ticks.json",
		ChainId:        42161,
		DefaultBase:    BASE_TOKEN0,
		RetentionDays:  30,
		RangeWindow:    24 * time.Hour,
		RPCRate:        5,
		RequestTimeout: 10 * time.Second,
		Retry: SRetry{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
		},
		PriceFeeders:   []string{"coingecko", "dexscreener"},
		CoinGeckoURL:   "https://api.coingecko.com/api/v3",
		DexScreenerURL: "https://api.dexscreener.com",
	}
}

// LoadConfig builds the run configuration: defaults, then the yaml file, then the environment.
func LoadConfig() (*SConfig, error) {
	c := DefaultConfig()

	path := os.Getenv("LPTRACKER_CONFIG")
	if path == "" {
		folder, err := GetDataFolder()
		if err != nil {
			return nil, err
		}
		c.DataFolder = folder
		path = filepath.Join(folder, CONFIG_NAME)
	}

	if err := RestoreConfig(path, c); err != nil {
		return nil, err
	}

	c.applyEnv()

	if c.DataFolder == "" {
		c.DataFolder = filepath.Dir(path)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func RestoreConfig(path string, c *SConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// it is ok. Let's use default config
			log.Warn().Msgf("no config file found: %v", err)
			return nil
		}
		return err
	}

	err = yaml.Unmarshal(data, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	return nil
}

func (c *SConfig) applyEnv() {
	if v := os.Getenv("ARBITRUM_RPC"); v != "" {
		c.RPC_URL = v
	}
	if v := os.Getenv("WALLET_ADDRESS"); v != "" {
		c.WalletAddress = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGeckoAPIKey = v
	}
}

func (c *SConfig) Validate() error {
	if strings.TrimSpace(c.RPC_URL) == "" {
		return errors.New("rpc_url is empty (set ARBITRUM_RPC)")
	}
	if !common.IsHexAddress(c.WalletAddress) {
		return fmt.Errorf("wallet_address is not an address: %q", c.WalletAddress)
	}
	if c.PositionManager != "" && !common.IsHexAddress(c.PositionManager) {
		return fmt.Errorf("position_manager is not an address: %q", c.PositionManager)
	}
	if c.Pool != "" && !common.IsHexAddress(c.Pool) {
		return fmt.Errorf("pool is not an address: %q", c.Pool)
	}
	if _, err := ParseBase(c.DefaultBase); err != nil {
		return err
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
	if c.RangeWindow <= 0 {
		c.RangeWindow = 24 * time.Hour
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 1
	}
	return nil
}

// ManagerAddress returns the configured NFPM or the predefined one for the chain.
func (c *SConfig) ManagerAddress() (common.Address, error) {
	if c.PositionManager != "" {
		return common.HexToAddress(c.PositionManager), nil
	}
	ch := GetChain(c.ChainId)
	if ch == nil || ch.PositionManager == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no position manager known for chain %d", c.ChainId)
	}
	return ch.PositionManager, nil
}

func (c *SConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataFolder, name)
}

func GetDataFolder() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", fmt.Errorf("LOCALAPPDATA environment variable is not set")
		}
		dataDir = filepath.Join(localAppData, AppName)
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, "Library", "Application Support", AppName)
	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, "."+AppName)
	}

	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		return "", fmt.Errorf("error creating data directory: %v", err)
	}

	return dataDir, nil
}
