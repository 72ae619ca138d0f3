package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// VendingPolicy bounds what a single token request may ask for. It lives
// in a yaml file so operators can tighten limits without a redeploy.
type VendingPolicy struct {
	MinUnitsPerRequest int64 `mapstructure:"minUnitsPerRequest"`
	MaxUnitsPerRequest int64 `mapstructure:"maxUnitsPerRequest"`
	VendingPaused      bool  `mapstructure:"vendingPaused"`
}

func DefaultVendingPolicy() VendingPolicy {
	return VendingPolicy{
		MinUnitsPerRequest: 1,
		MaxUnitsPerRequest: 100_000,
	}
}

// PolicyHolder serves the current policy and hot-reloads it when the
// file changes.
type PolicyHolder struct {
	current atomic.Value // holds VendingPolicy
}

func NewPolicyHolder(log *zap.Logger) (*PolicyHolder, error) {
	log = log.Named("vending.policy")
	v := viper.New()

	v.SetConfigName("vending")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/voltvend/config")
	v.AddConfigPath("/etc/voltvend")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOLTVEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultVendingPolicy()
	v.SetDefault("policy.minUnitsPerRequest", defaults.MinUnitsPerRequest)
	v.SetDefault("policy.maxUnitsPerRequest", defaults.MaxUnitsPerRequest)
	v.SetDefault("policy.vendingPaused", defaults.VendingPaused)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy VendingPolicy
	if err := v.UnmarshalKey("policy", &policy); err != nil {
		return nil, err
	}
	if err := validateVendingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated VendingPolicy
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Warn("policy reload failed", zap.Error(err))
			return
		}
		if err := validateVendingPolicy(updated); err != nil {
			log.Warn("invalid policy ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PolicyHolder) Get() VendingPolicy {
	return h.current.Load().(VendingPolicy)
}

// Set replaces the current policy. Intended for tests.
func (h *PolicyHolder) Set(policy VendingPolicy) {
	h.current.Store(policy)
}

func validateVendingPolicy(policy VendingPolicy) error {
	if policy.MinUnitsPerRequest < 1 {
		return errors.New("policy.minUnitsPerRequest must be at least 1")
	}
	if policy.MaxUnitsPerRequest < policy.MinUnitsPerRequest {
		return errors.New("policy.maxUnitsPerRequest below minUnitsPerRequest")
	}
	return nil
}
