package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StarterGrant is the allotment applied to a wallet that still matches the
// all-zero predicate. See wallet service ConditionalBootstrapGrant.
type StarterGrant struct {
	Enabled          bool `mapstructure:"enabled"`
	ProjectVouchers  uint `mapstructure:"projectVouchers"`
	FacilitatorSeats uint `mapstructure:"facilitatorSeats"`
	StorytellerSeats uint `mapstructure:"storytellerSeats"`
}

type EntitlementConfig struct {
	StarterGrant StarterGrant `mapstructure:"starterGrant"`
}

func DefaultEntitlementConfig() EntitlementConfig {
	return EntitlementConfig{
		StarterGrant: StarterGrant{
			Enabled:          true,
			ProjectVouchers:  1,
			FacilitatorSeats: 1,
			StorytellerSeats: 2,
		},
	}
}

type EntitlementConfigHolder struct {
	current atomic.Value // holds EntitlementConfig
}

func NewEntitlementConfigHolder() (*EntitlementConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("entitlement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/heirloom/config") // Volume-mounted config
	v.AddConfigPath("/etc/heirloom")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("HEIRLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultEntitlementConfig()
		v.SetDefault("entitlement.starterGrant", defaults.StarterGrant)
	}

	var cfg EntitlementConfig
	if err := v.UnmarshalKey("entitlement", &cfg); err != nil {
		return nil, err
	}
	if err := validateEntitlementConfig(cfg); err != nil {
		return nil, err
	}

	holder := &EntitlementConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EntitlementConfig
		if err := v.UnmarshalKey("entitlement", &updated); err != nil {
			log.Printf("[entitlement-config] reload failed: %v", err)
			return
		}
		if err := validateEntitlementConfig(updated); err != nil {
			log.Printf("[entitlement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[entitlement-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticEntitlementConfigHolder wraps a fixed config with no file watch.
func NewStaticEntitlementConfigHolder(cfg EntitlementConfig) *EntitlementConfigHolder {
	holder := &EntitlementConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *EntitlementConfigHolder) Get() EntitlementConfig {
	return h.current.Load().(EntitlementConfig)
}

func validateEntitlementConfig(cfg EntitlementConfig) error {
	grant := cfg.StarterGrant
	if grant.Enabled && grant.ProjectVouchers == 0 && grant.FacilitatorSeats == 0 && grant.StorytellerSeats == 0 {
		return errors.New("entitlement.starterGrant enabled but empty")
	}
	return nil
}
