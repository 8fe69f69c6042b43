//go:build !windows

package windows

// IsWindowsService always reports false off Windows.
func IsWindowsService() bool { return false }

// RunAsService is a no-op off Windows; the process runs in the foreground.
func RunAsService(name string, stopChan chan<- struct{}) error { return nil }
