package event

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		code string
		want Level
	}{
		{"info", LevelInfo},
		{"warn", LevelWarning},
		{"alrm", LevelAlarm},
		{"alarm", LevelAlarm},
		{"critical", LevelCritical},
		{"CRITICAL", LevelCritical},
		{"", LevelInfo},
		{"garbage", LevelInfo},
		{"warning", LevelInfo}, // not in the feed vocabulary
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.code); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLevelUIString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelInfo, "Info"},
		{LevelWarning, "Warning"},
		{LevelAlarm, "Alarm"},
		{LevelCritical, "Critical"},
		{Level(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.UIString(); got != tt.want {
			t.Errorf("UIString() = %q, want %q", got, tt.want)
		}
	}
}

func TestLevelColor(t *testing.T) {
	if got := LevelInfo.Color(true); got != (RGB{122, 122, 122}) {
		t.Errorf("Info color = %v", got)
	}
	if got := LevelWarning.Color(true); got != (RGB{62, 107, 199}) {
		t.Errorf("Warning graphical color = %v", got)
	}
	if got := LevelWarning.Color(false); got != (RGB{0, 0, 0}) {
		t.Errorf("Warning plain color = %v", got)
	}
	if got := LevelAlarm.Color(false); got != (RGB{204, 120, 10}) {
		t.Errorf("Alarm color = %v", got)
	}
	if got := LevelCritical.Color(false); got != (RGB{175, 0, 0}) {
		t.Errorf("Critical color = %v", got)
	}
	if got := Level(42).Color(true); got != (RGB{0, 0, 0}) {
		t.Errorf("out-of-range color = %v", got)
	}
}

func TestLevelCodeRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelInfo, LevelWarning, LevelAlarm, LevelCritical} {
		if got := ParseLevel(l.Code()); got != l {
			t.Errorf("ParseLevel(Code()) = %v, want %v", got, l)
		}
	}
}
