package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	joined, err := SafeJoin(base, "exports", "clip.mkv")
	assert.NoError(t, err)
	assert.Contains(t, joined, base)

	_, err = SafeJoin(base, "..", "..", "etc", "passwd")
	assert.Error(t, err)

	_, err = SafeJoin(base, "/etc/passwd")
	assert.Error(t, err)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean name untouched", "Server.Front Door.2026-03-01 12-30-45", "Server.Front Door.2026-03-01 12-30-45"},
		{"separators replaced", `dvr/main\office`, "dvr_main_office"},
		{"windows reserved chars", `a<b>c:d"e|f?g*h`, "a_b_c_d_e_f_g_h"},
		{"control chars replaced", "cam\x01name", "cam_name"},
		{"trailing dots trimmed", "export...", "export"},
		{"trailing spaces trimmed", "export   ", "export"},
		{"never empty", "...", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input))
		})
	}
}
