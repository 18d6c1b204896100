package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

const (
	// DatadirKey is the local data directory to store the internal state of
	// the daemon.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values
	// https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// HTTPPortKey is the port where the HTTP interface will listen on.
	HTTPPortKey = "HTTP_PORT"
	// DBTypeKey is used to switch database type between those supported.
	DBTypeKey = "DB_TYPE"
	// TradeExpiryTimeKey is the duration in seconds of a trade request
	// before it can only be cancelled or refunded.
	TradeExpiryTimeKey = "TRADE_EXPIRY_TIME"
	// DisputeDelayKey is the duration in seconds after the fiat-deposit
	// confirmation before the dispute window opens.
	DisputeDelayKey = "DISPUTE_DELAY"
	// BurnFeeBpsKey ...
	BurnFeeBpsKey = "BURN_FEE_BPS"
	// ChainFeeBpsKey ...
	ChainFeeBpsKey = "CHAIN_FEE_BPS"
	// WarchestFeeBpsKey ...
	WarchestFeeBpsKey = "WARCHEST_FEE_BPS"
	// ConversionFeeBpsKey ...
	ConversionFeeBpsKey = "CONVERSION_FEE_BPS"
	// ArbitratorFeeBpsKey ...
	ArbitratorFeeBpsKey = "ARBITRATOR_FEE_BPS"
	// MaxTotalFeeBpsKey is the ceiling for the sum of all fee rates.
	MaxTotalFeeBpsKey = "MAX_TOTAL_FEE_BPS"
	// BurnAddressKey ...
	BurnAddressKey = "BURN_ADDRESS"
	// ChainFeeAddressKey ...
	ChainFeeAddressKey = "CHAIN_FEE_ADDRESS"
	// WarchestAddressKey ...
	WarchestAddressKey = "WARCHEST_ADDRESS"
	// ConversionAddressKey ...
	ConversionAddressKey = "CONVERSION_ADDRESS"
	// TradeLimitMinUsdKey ...
	TradeLimitMinUsdKey = "TRADE_LIMIT_MIN_USD"
	// TradeLimitMaxUsdKey ...
	TradeLimitMaxUsdKey = "TRADE_LIMIT_MAX_USD"
	// MaxActiveTradesKey bounds the non-terminal trades per user.
	MaxActiveTradesKey = "MAX_ACTIVE_TRADES"
	// MaxPriceAgeKey rejects oracle quotes older than this, in seconds.
	MaxPriceAgeKey = "MAX_PRICE_AGE"
	// MinPriceConfidenceKey rejects oracle quotes below this confidence.
	MinPriceConfidenceKey = "MIN_PRICE_CONFIDENCE"
	// ReputationGainBpsKey ...
	ReputationGainBpsKey = "REPUTATION_GAIN_BPS"
	// ReputationSlashBpsKey ...
	ReputationSlashBpsKey = "REPUTATION_SLASH_BPS"
	// OracleEnabledKey enables the kraken websocket price source; when
	// disabled a static source is used.
	OracleEnabledKey = "ORACLE_ENABLED"
	// StatsIntervalKey defines the interval for printing basic statistics.
	StatsIntervalKey = "STATS_INTERVAL"

	// DbLocation is the subdirectory of the datadir holding the database.
	DbLocation = "db"

	// DBBadger and DBInMemory are the supported database types.
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var vip *viper.Viper

// InitConfig loads the configuration from the environment and validates
// it.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("LOCALMONEY")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(HTTPPortKey, 9580)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(TradeExpiryTimeKey, 1200)
	vip.SetDefault(DisputeDelayKey, 1800)
	vip.SetDefault(BurnFeeBpsKey, 100)
	vip.SetDefault(ChainFeeBpsKey, 50)
	vip.SetDefault(WarchestFeeBpsKey, 50)
	vip.SetDefault(ConversionFeeBpsKey, 0)
	vip.SetDefault(ArbitratorFeeBpsKey, 100)
	vip.SetDefault(MaxTotalFeeBpsKey, 1000)
	vip.SetDefault(BurnAddressKey, "fee/burn")
	vip.SetDefault(ChainFeeAddressKey, "fee/chain")
	vip.SetDefault(WarchestAddressKey, "fee/warchest")
	vip.SetDefault(ConversionAddressKey, "fee/conversion")
	vip.SetDefault(TradeLimitMinUsdKey, "1")
	vip.SetDefault(TradeLimitMaxUsdKey, "50000")
	vip.SetDefault(MaxActiveTradesKey, 10)
	vip.SetDefault(MaxPriceAgeKey, 300)
	vip.SetDefault(MinPriceConfidenceKey, "0.5")
	vip.SetDefault(ReputationGainBpsKey, 25)
	vip.SetDefault(ReputationSlashBpsKey, 100)
	vip.SetDefault(OracleEnabledKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}
	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// ProtocolConfig assembles the domain configuration seeded into the
// storage backend on first run.
func ProtocolConfig() (domain.ProtocolConfig, error) {
	minUsd, err := decimal.NewFromString(GetString(TradeLimitMinUsdKey))
	if err != nil {
		return domain.ProtocolConfig{}, fmt.Errorf("invalid %s: %s", TradeLimitMinUsdKey, err)
	}
	maxUsd, err := decimal.NewFromString(GetString(TradeLimitMaxUsdKey))
	if err != nil {
		return domain.ProtocolConfig{}, fmt.Errorf("invalid %s: %s", TradeLimitMaxUsdKey, err)
	}
	minConfidence, err := decimal.NewFromString(GetString(MinPriceConfidenceKey))
	if err != nil {
		return domain.ProtocolConfig{}, fmt.Errorf("invalid %s: %s", MinPriceConfidenceKey, err)
	}

	cfg := domain.ProtocolConfig{
		FeeRates: domain.FeeRates{
			BurnBps:       uint64(GetInt(BurnFeeBpsKey)),
			ChainBps:      uint64(GetInt(ChainFeeBpsKey)),
			WarchestBps:   uint64(GetInt(WarchestFeeBpsKey)),
			ConversionBps: uint64(GetInt(ConversionFeeBpsKey)),
			ArbitratorBps: uint64(GetInt(ArbitratorFeeBpsKey)),
		},
		FeeRecipients: domain.FeeRecipients{
			Burn:       GetString(BurnAddressKey),
			Chain:      GetString(ChainFeeAddressKey),
			Warchest:   GetString(WarchestAddressKey),
			Conversion: GetString(ConversionAddressKey),
		},
		MaxTotalFeeBps:         uint64(GetInt(MaxTotalFeeBpsKey)),
		TradeLimitMinUsd:       minUsd,
		TradeLimitMaxUsd:       maxUsd,
		MaxActiveTradesPerUser: GetInt(MaxActiveTradesKey),
		TradeExpirationSecs:    int64(GetInt(TradeExpiryTimeKey)),
		DisputeDelaySecs:       int64(GetInt(DisputeDelayKey)),
		MaxPriceAgeSecs:        int64(GetInt(MaxPriceAgeKey)),
		MinPriceConfidence:     minConfidence,
		ReputationGainBps:      int32(GetInt(ReputationGainBpsKey)),
		ReputationSlashBps:     int32(GetInt(ReputationSlashBpsKey)),
	}
	if err := cfg.Validate(); err != nil {
		return domain.ProtocolConfig{}, err
	}
	return cfg, nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf("%s must be one of %s, %s", DBTypeKey, DBBadger, DBInMemory)
	}

	if GetInt(TradeExpiryTimeKey) <= 0 {
		return fmt.Errorf("%s must be positive", TradeExpiryTimeKey)
	}
	if GetInt(DisputeDelayKey) < 0 {
		return fmt.Errorf("%s must not be negative", DisputeDelayKey)
	}
	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".localmoney"
	}
	return filepath.Join(home, ".localmoney")
}
