package event

import "testing"

func TestParseType(t *testing.T) {
	tests := []struct {
		code string
		want Type
	}{
		{"motion", TypeCameraMotion},
		{"continuous", TypeCameraContinuous},
		{"not found", TypeCameraNotFound},
		{"video signal loss", TypeCameraVideoLost},
		{"audio signal loss", TypeCameraAudioLost},
		{"disk-space", TypeSystemDiskSpace},
		{"crash", TypeSystemCrash},
		{"boot", TypeSystemBoot},
		{"shutdown", TypeSystemShutdown},
		{"reboot", TypeSystemReboot},
		{"power-outage", TypeSystemPowerOutage},
		{"Motion", TypeCameraMotion},
		{"", TypeUnknown},
		{"laser-sharks", TypeUnknown},
	}

	for _, tt := range tests {
		if got := ParseType(tt.code); got != tt.want {
			t.Errorf("ParseType(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTypeUIString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeCameraMotion, "Motion"},
		{TypeCameraContinuous, "Continuous"},
		{TypeCameraNotFound, "Not Found"},
		{TypeCameraVideoLost, "Video Lost"},
		{TypeCameraAudioLost, "Audio Lost"},
		{TypeSystemDiskSpace, "Disk Space"},
		{TypeSystemCrash, "Crash"},
		{TypeSystemBoot, "Startup"},
		{TypeSystemShutdown, "Shutdown"},
		{TypeSystemReboot, "Reboot"},
		{TypeSystemPowerOutage, "Power Lost"},
		{TypeUnknown, "Unknown"},
		{Type(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.UIString(); got != tt.want {
			t.Errorf("UIString() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeScopes(t *testing.T) {
	cameraTypes := []Type{TypeCameraMotion, TypeCameraContinuous, TypeCameraNotFound, TypeCameraVideoLost, TypeCameraAudioLost}
	systemTypes := []Type{TypeSystemDiskSpace, TypeSystemCrash, TypeSystemBoot, TypeSystemShutdown, TypeSystemReboot, TypeSystemPowerOutage}

	for _, typ := range cameraTypes {
		if !typ.IsCamera() || typ.IsSystem() {
			t.Errorf("%v should be camera scoped", typ)
		}
	}
	for _, typ := range systemTypes {
		if !typ.IsSystem() || typ.IsCamera() {
			t.Errorf("%v should be system scoped", typ)
		}
	}
	if TypeUnknown.IsCamera() || TypeUnknown.IsSystem() {
		t.Error("Unknown should be neither camera nor system scoped")
	}
}

func TestTypeCodeRoundTrip(t *testing.T) {
	for typ := TypeUnknown; typ <= TypeSystemPowerOutage; typ++ {
		if got := ParseType(typ.Code()); got != typ {
			t.Errorf("ParseType(Code()) = %v, want %v", got, typ)
		}
	}
}
