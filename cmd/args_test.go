package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstallArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		dir     string
		reset   bool
		wantErr bool
	}{
		{"dir only", []string{`C:\Games\Cubic Odyssey`}, `C:\Games\Cubic Odyssey`, false, false},
		{"quoted with trailing slash", []string{`"C:\Games\CO\"`}, `C:\Games\CO`, false, false},
		{"explicit reset", []string{"/games/co", "1"}, "/games/co", true, false},
		{"explicit no reset", []string{"/games/co/", "0"}, "/games/co", false, false},
		{"legacy merged flag", []string{`"C:\Games\CO\" 1`}, `C:\Games\CO`, true, false},
		{"legacy merged zero", []string{"/games/co 0"}, "/games/co", false, false},
		{"space in dir is not a flag", []string{"/games/my mod"}, "/games/my mod", false, false},
		{"root stays root", []string{"/"}, "/", false, false},
		{"bad flag", []string{"/games/co", "2"}, "", false, true},
		{"no args", nil, "", false, true},
		{"too many", []string{"a", "1", "x"}, "", false, true},
		{"empty dir", []string{`""`}, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, reset, err := parseInstallArgs(installCmd, tt.args)
			if tt.wantErr {
				var usage *UsageError
				require.ErrorAs(t, err, &usage)
				assert.Same(t, installCmd, usage.Cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.reset, reset)
		})
	}
}
