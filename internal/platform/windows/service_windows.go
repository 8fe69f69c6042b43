//go:build windows

package windows

import (
	"golang.org/x/sys/windows/svc"
)

// ServiceRunner handles the Windows Service lifecycle for the gateway binaries.
type ServiceRunner struct {
	StopChan chan<- struct{}
}

// Execute implements svc.Handler
func (m *ServiceRunner) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}
	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

	for c := range r {
		switch c.Cmd {
		case svc.Interrogate:
			changes <- c.CurrentStatus
		case svc.Stop, svc.Shutdown:
			if m.StopChan != nil {
				close(m.StopChan)
			}
			changes <- svc.Status{State: svc.StopPending}
			return false, 0
		}
	}
	return false, 0
}

// IsWindowsService reports whether the process runs under the service control manager.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// RunAsService blocks running the service control loop until the SCM stops us.
func RunAsService(name string, stopChan chan<- struct{}) error {
	return svc.Run(name, &ServiceRunner{StopChan: stopChan})
}
