package utils

import (
	"fmt"
	"time"
)

// set via ldflags
var BuildVersion string
var BuildRelease string
var Buildtime string

func GetBuildVersion() string {
	if BuildVersion == "" {
		BuildVersion = "dev"
	}
	if BuildRelease == "" {
		return fmt.Sprintf("git-%v", BuildVersion)
	}
	return fmt.Sprintf("%v (git-%v)", BuildRelease, BuildVersion)
}

// GetBuildTime returns the build timestamp, or the zero time for local builds
func GetBuildTime() time.Time {
	buildTime, err := time.Parse("2006-01-02T15:04:05Z", Buildtime)
	if err != nil {
		return time.Time{}
	}
	return buildTime
}
