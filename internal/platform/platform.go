// Package platform gates the CLI on the operating systems whose partition
// table and usage calls gopsutil implements.
package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents supported operating systems
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
	Darwin  SupportedOS = "darwin"
)

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported reports whether gopsutil can enumerate partitions and read
// usage on the current OS
func IsSupported() bool {
	switch GetOS() {
	case Linux, Windows, Darwin:
		return true
	}
	return false
}

// ValidateSupport returns an error if the current OS is not supported
func ValidateSupport() error {
	if !IsSupported() {
		return fmt.Errorf("unsupported operating system: %s. Supported: linux, windows, darwin", runtime.GOOS)
	}
	return nil
}
