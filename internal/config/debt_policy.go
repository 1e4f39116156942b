package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DebtPolicy struct {
	AgingBuckets []AgingBucket `mapstructure:"agingBuckets"`
	RiskLevels   []RiskLevel   `mapstructure:"riskLevels"`
}

type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

// RiskLevel matches when either threshold is reached. Levels are checked in order.
type RiskLevel struct {
	Level          string `mapstructure:"level"`
	MinOutstanding int64  `mapstructure:"minOutstanding"`
	MinDays        int    `mapstructure:"minDays"`
}

func DefaultDebtPolicy() DebtPolicy {
	return DebtPolicy{
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "61+", MinDays: 61, MaxDays: nil},
		},
		RiskLevels: []RiskLevel{
			{Level: "high", MinOutstanding: 500_000, MinDays: 60},
			{Level: "medium", MinOutstanding: 100_000, MinDays: 31},
			{Level: "low", MinOutstanding: 0, MinDays: 0},
		},
	}
}

func intPtr(v int) *int { return &v }

// BucketFor returns the label of the first bucket containing days.
func (p DebtPolicy) BucketFor(days int) string {
	if days < 0 {
		days = 0
	}
	for _, bucket := range p.AgingBuckets {
		if days < bucket.MinDays {
			continue
		}
		if bucket.MaxDays != nil && days > *bucket.MaxDays {
			continue
		}
		return bucket.Label
	}
	if len(p.AgingBuckets) == 0 {
		return ""
	}
	return p.AgingBuckets[len(p.AgingBuckets)-1].Label
}

// RiskFor returns the first level whose outstanding or age threshold is met.
// A level with both thresholds at zero acts as the fallback.
func (p DebtPolicy) RiskFor(outstanding int64, oldestDays int) string {
	for _, level := range p.RiskLevels {
		if level.MinOutstanding == 0 && level.MinDays == 0 {
			return level.Level
		}
		if level.MinOutstanding > 0 && outstanding >= level.MinOutstanding {
			return level.Level
		}
		if level.MinDays > 0 && oldestDays >= level.MinDays {
			return level.Level
		}
	}
	return ""
}

type DebtPolicyHolder struct {
	current atomic.Value // holds DebtPolicy
}

func NewDebtPolicyHolder(log *zap.Logger) (*DebtPolicyHolder, error) {
	return LoadDebtPolicyHolder(log, "/var/lib/aquaflow/config", "/etc/aquaflow", ".")
}

// LoadDebtPolicyHolder reads debt.yml from the first matching path and keeps
// watching it. Missing files fall back to DefaultDebtPolicy.
func LoadDebtPolicyHolder(log *zap.Logger, paths ...string) (*DebtPolicyHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("debt.policy")

	v := viper.New()
	v.SetConfigName("debt")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("AQUAFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
		defaults := DefaultDebtPolicy()
		v.SetDefault("debt.agingBuckets", defaults.AgingBuckets)
		v.SetDefault("debt.riskLevels", defaults.RiskLevels)
	}

	var policy DebtPolicy
	if err := v.UnmarshalKey("debt", &policy); err != nil {
		return nil, err
	}
	if err := validateDebtPolicy(policy); err != nil {
		return nil, err
	}

	holder := &DebtPolicyHolder{}
	holder.current.Store(policy)

	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DebtPolicy
		if err := v.UnmarshalKey("debt", &updated); err != nil {
			log.Warn("reload failed", zap.String("file", e.Name), zap.Error(err))
			return
		}
		if err := validateDebtPolicy(updated); err != nil {
			log.Warn("invalid policy ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticDebtPolicyHolder wraps a fixed policy.
func NewStaticDebtPolicyHolder(policy DebtPolicy) *DebtPolicyHolder {
	holder := &DebtPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *DebtPolicyHolder) Get() DebtPolicy {
	if h == nil {
		return DefaultDebtPolicy()
	}
	return h.current.Load().(DebtPolicy)
}

func validateDebtPolicy(p DebtPolicy) error {
	if len(p.AgingBuckets) == 0 {
		return errors.New("debt.agingBuckets cannot be empty")
	}
	if len(p.RiskLevels) == 0 {
		return errors.New("debt.riskLevels cannot be empty")
	}
	for _, bucket := range p.AgingBuckets {
		if strings.TrimSpace(bucket.Label) == "" {
			return errors.New("debt.agingBuckets label cannot be empty")
		}
		if bucket.MaxDays != nil && *bucket.MaxDays < bucket.MinDays {
			return errors.New("debt.agingBuckets maxDays must not be below minDays")
		}
	}
	return nil
}
