package main

import (
	"fmt"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

// loadConfig reads the dashboard config (embedded defaults when path is empty) into utils.Config
func loadConfig(path string) error {
	cfg := &types.Config{}
	if err := utils.ReadConfig(cfg, path); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	utils.Config = cfg
	return nil
}
