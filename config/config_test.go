package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	conf, err := Default()
	require.NoError(t, err)
	require.Equal(t, uint(500), conf.BitRate)
	require.Equal(t, "ff_master", conf.Algorithm)
	require.Equal(t, 2*1024*1024, conf.BufferSize)
	require.Equal(t, "info", conf.LogLevel)
	require.Equal(t, LogFormatAuto, conf.LogFormat)
	require.Equal(t, "(embedded)", conf.Source)
}

func TestParseOverridesDefaults(t *testing.T) {
	conf, err := Parse([]byte(`
bitrate = 250
algorithm = "nco[4,8]"
`))
	require.NoError(t, err)
	require.Equal(t, uint(250), conf.BitRate)
	require.Equal(t, "nco[4,8]", conf.Algorithm)

	// untouched keys keep defaults
	require.Equal(t, 2*1024*1024, conf.BufferSize)
	require.Equal(t, "info", conf.LogLevel)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `bitrate = `},
		{"unknown key", `bitrates = 500`},
		{"zero bitrate", `bitrate = 0`},
		{"empty algorithm", `algorithm = ""`},
		{"buffer not power of two", `buffer_size = 1000`},
		{"tiny buffer", `buffer_size = 2`},
		{"bad level", `log_level = "verbose"`},
		{"bad format", `log_format = "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_format = \"json\"\n"), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, LogFormatJSON, conf.LogFormat)
	require.Equal(t, path, conf.Source)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestLoadUserFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("per-user config lives under AppData on Windows")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)

	// no user file: embedded defaults
	conf, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "(embedded)", conf.Source)

	// the lookup never creates the file
	require.NoFileExists(t, filepath.Join(home, FileName))

	userPath := filepath.Join(home, FileName)
	require.NoError(t, os.WriteFile(userPath, []byte("bitrate = 300\n"), 0644))
	conf, err = Load("")
	require.NoError(t, err)
	require.Equal(t, uint(300), conf.BitRate)
	require.Equal(t, userPath, conf.Source)
}
