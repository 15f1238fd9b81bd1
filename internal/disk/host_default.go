//go:build !windows

package disk

// newPlatformHost creates the gopsutil-backed host used on unix systems
func newPlatformHost() Host {
	return &psutilHost{}
}
