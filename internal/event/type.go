package event

import "strings"

// Type classifies what an event reports: a camera-scoped occurrence
// (motion, signal loss) or a system-level one (disk space, crash).
type Type int

const (
	TypeUnknown Type = iota
	TypeCameraMotion
	TypeCameraContinuous
	TypeCameraNotFound
	TypeCameraVideoLost
	TypeCameraAudioLost
	TypeSystemDiskSpace
	TypeSystemCrash
	TypeSystemBoot
	TypeSystemShutdown
	TypeSystemReboot
	TypeSystemPowerOutage
)

// ParseType maps a feed type code onto a Type. Unknown codes degrade to
// TypeUnknown rather than erroring.
func ParseType(code string) Type {
	switch strings.ToLower(code) {
	case "motion":
		return TypeCameraMotion
	case "continuous":
		return TypeCameraContinuous
	case "not found":
		return TypeCameraNotFound
	case "video signal loss":
		return TypeCameraVideoLost
	case "audio signal loss":
		return TypeCameraAudioLost
	case "disk-space":
		return TypeSystemDiskSpace
	case "crash":
		return TypeSystemCrash
	case "boot":
		return TypeSystemBoot
	case "shutdown":
		return TypeSystemShutdown
	case "reboot":
		return TypeSystemReboot
	case "power-outage":
		return TypeSystemPowerOutage
	default:
		return TypeUnknown
	}
}

// Code returns the canonical feed code for the type, used for storage.
func (t Type) Code() string {
	switch t {
	case TypeCameraMotion:
		return "motion"
	case TypeCameraContinuous:
		return "continuous"
	case TypeCameraNotFound:
		return "not found"
	case TypeCameraVideoLost:
		return "video signal loss"
	case TypeCameraAudioLost:
		return "audio signal loss"
	case TypeSystemDiskSpace:
		return "disk-space"
	case TypeSystemCrash:
		return "crash"
	case TypeSystemBoot:
		return "boot"
	case TypeSystemShutdown:
		return "shutdown"
	case TypeSystemReboot:
		return "reboot"
	case TypeSystemPowerOutage:
		return "power-outage"
	default:
		return "unknown"
	}
}

// UIString returns the display label for the type.
func (t Type) UIString() string {
	switch t {
	case TypeCameraMotion:
		return "Motion"
	case TypeCameraContinuous:
		return "Continuous"
	case TypeCameraNotFound:
		return "Not Found"
	case TypeCameraVideoLost:
		return "Video Lost"
	case TypeCameraAudioLost:
		return "Audio Lost"
	case TypeSystemDiskSpace:
		return "Disk Space"
	case TypeSystemCrash:
		return "Crash"
	case TypeSystemBoot:
		return "Startup"
	case TypeSystemShutdown:
		return "Shutdown"
	case TypeSystemReboot:
		return "Reboot"
	case TypeSystemPowerOutage:
		return "Power Lost"
	default:
		return "Unknown"
	}
}

// IsCamera reports whether the type is scoped to a single camera.
func (t Type) IsCamera() bool {
	switch t {
	case TypeCameraMotion, TypeCameraContinuous, TypeCameraNotFound, TypeCameraVideoLost, TypeCameraAudioLost:
		return true
	}
	return false
}

// IsSystem reports whether the type describes the DVR system itself.
func (t Type) IsSystem() bool {
	switch t {
	case TypeSystemDiskSpace, TypeSystemCrash, TypeSystemBoot, TypeSystemShutdown, TypeSystemReboot, TypeSystemPowerOutage:
		return true
	}
	return false
}
