package config

import (
	_ "embed"
)

// dashboard config
//
//go:embed default.config.yml
var DefaultConfigYml string

// iana timezone names offered in the timezone selectors
//
//go:embed timezones.txt
var TimezonesTxt string
