package utils

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/brubeckscan/config"
	"github.com/ethpandaops/brubeckscan/types"
)

// Config is the globally accessible configuration
var Config *types.Config

// ReadConfig will process a configuration
func ReadConfig(cfg *types.Config, path string) error {
	err := readConfigFile(cfg, path)
	if err != nil {
		return err
	}

	err = readConfigEnv(cfg)
	if err != nil {
		return fmt.Errorf("error reading config from environment: %v", err)
	}

	if cfg.Endpoints.NodeApi == "" {
		return fmt.Errorf("missing node api endpoint (need the node api to look up nodes)")
	}
	if cfg.Endpoints.RequestTimeout == 0 {
		cfg.Endpoints.RequestTimeout = 20 * time.Second
	}

	if cfg.Frontend.DefaultPayoutTimezone == "" {
		cfg.Frontend.DefaultPayoutTimezone = "UTC"
	}
	if cfg.Frontend.DefaultClaimTimezone == "" {
		cfg.Frontend.DefaultClaimTimezone = "US/Eastern"
	}
	if _, err := time.LoadLocation(cfg.Frontend.DefaultPayoutTimezone); err != nil {
		return fmt.Errorf("invalid default payout timezone %v: %v", cfg.Frontend.DefaultPayoutTimezone, err)
	}
	if _, err := time.LoadLocation(cfg.Frontend.DefaultClaimTimezone); err != nil {
		return fmt.Errorf("invalid default claim timezone %v: %v", cfg.Frontend.DefaultClaimTimezone, err)
	}

	log.WithFields(log.Fields{
		"nodeApi":           GetRedactedUrl(cfg.Endpoints.NodeApi),
		"accRewardsApi":     GetRedactedUrl(cfg.Endpoints.AccRewardsApi),
		"claimedRewardsApi": GetRedactedUrl(cfg.Endpoints.ClaimedRewards),
		"aprApyApi":         GetRedactedUrl(cfg.Endpoints.AprApyApi),
	}).Infof("did init config")

	return nil
}

func readConfigFile(cfg *types.Config, path string) error {
	err := yaml.Unmarshal([]byte(config.DefaultConfigYml), cfg)
	if err != nil {
		return fmt.Errorf("error decoding default config: %v", err)
	}
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file %v: %v", path, err)
	}
	defer f.Close()

	fileCfg := &types.Config{}
	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(fileCfg)
	if err != nil {
		return fmt.Errorf("error decoding config file %v: %v", path, err)
	}

	// values from the config file take precedence over the embedded defaults
	err = mergo.Merge(cfg, fileCfg, mergo.WithOverride)
	if err != nil {
		return fmt.Errorf("error merging config file %v: %v", path, err)
	}

	return nil
}

func readConfigEnv(cfg *types.Config) error {
	return envconfig.Process("", cfg)
}
