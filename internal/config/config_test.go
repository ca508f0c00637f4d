package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", ":8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Web.ListenAddr)
	assert.Equal(t, 50.0, cfg.Stroke.Width)
	timeout, err := cfg.LoadTimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
[images]
background = "a.png"
foreground = "b.png"
strict_size = true
load_timeout = "2s"

[stroke]
width = 30

[display]
page_width = 800
page_height = 600
`)
	t.Setenv(EnvForeground, "https://example.com/front.webp")
	t.Setenv(EnvListenAddr, ":9999")

	cfg, err := Load(path, ":80")
	require.NoError(t, err)
	assert.Equal(t, "a.png", cfg.Images.Background)
	assert.Equal(t, "https://example.com/front.webp", cfg.Images.Foreground)
	assert.True(t, cfg.Images.StrictSize)
	assert.Equal(t, 30.0, cfg.Stroke.Width)
	assert.Equal(t, 800, cfg.Display.PageWidth)
	assert.Equal(t, ":9999", cfg.Web.ListenAddr)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown key", body: "[images]\nbackgrnd = \"x\"\n"},
		{name: "zero stroke", body: "[stroke]\nwidth = 0\n"},
		{name: "bad timeout", body: "[images]\nload_timeout = \"soon\"\n"},
		{name: "bad dev env", env: map[string]string{EnvDevMode: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			_, err := Load(path, ":80")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
