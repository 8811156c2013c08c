package utils

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/config"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

var timezoneNames []string
var timezoneNamesOnce sync.Once

// GetTimezoneNames returns the sorted list of IANA timezone names that can be loaded by this binary
func GetTimezoneNames() []string {
	timezoneNamesOnce.Do(func() {
		timezoneNames = make([]string, 0, 600)
		scanner := bufio.NewScanner(strings.NewReader(config.TimezonesTxt))
		for scanner.Scan() {
			name := strings.TrimSpace(scanner.Text())
			if name == "" || strings.HasPrefix(name, "#") {
				continue
			}
			if _, err := time.LoadLocation(name); err != nil {
				logrus.WithError(err).Debugf("skipping unknown timezone %v", name)
				continue
			}
			timezoneNames = append(timezoneNames, name)
		}
	})
	return timezoneNames
}

// LoadTimezone resolves a timezone name, falling back to defaultName when name is empty
func LoadTimezone(name string, defaultName string) (*time.Location, error) {
	if name == "" {
		name = defaultName
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownTimezone, name, err)
	}
	return loc, nil
}
