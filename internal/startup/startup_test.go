package startup

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopEntry(t *testing.T) {
	e := Entry{ID: "com.example.amp", Name: "amp", Args: []string{"--dir", "/data/my rig"}}

	content := e.desktopEntry("/usr/bin/ampswitcher")
	assert.Contains(t, content, "Name=amp\n")
	assert.Contains(t, content, `Exec=/usr/bin/ampswitcher --dir "/data/my rig"`)
}

func TestLaunchAgent(t *testing.T) {
	e := Entry{ID: "com.example.amp", Name: "amp", Args: []string{"serve"}}

	content := e.launchAgent("/Applications/amp")
	assert.Contains(t, content, "<string>com.example.amp</string>")
	assert.Contains(t, content, "<string>/Applications/amp</string>\n        <string>serve</string>")
}

func TestLinuxEnableDisable(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG autostart only")
	}
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	e := Entry{ID: "com.example.amp", Name: "amp", Exec: "/usr/bin/amp"}
	assert.False(t, e.Enabled())

	require.NoError(t, e.Set(true))
	assert.True(t, e.Enabled())

	data, err := os.ReadFile(filepath.Join(configHome, "autostart", "amp.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=/usr/bin/amp\n")

	require.NoError(t, e.Set(false))
	assert.False(t, e.Enabled())
	require.NoError(t, e.Disable(), "disabling twice is fine")
}
