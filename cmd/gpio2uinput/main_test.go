package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv(configEnv, "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--config", "/tmp/a.yaml"}, "/tmp/a.yaml"},
		{[]string{"--chip", "gpiochip4", "--config=/tmp/b.toml"}, "/tmp/b.toml"},
		{[]string{"--config"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, findUserConfig(tt.args), "args %v", tt.args)
	}

	t.Setenv(configEnv, "/etc/custom.json")
	assert.Equal(t, "/etc/custom.json", findUserConfig(nil), "from env")
	assert.Equal(t, "x.yml", findUserConfig([]string{"--config=x.yml"}), "flag over env")
}

func TestConfigCandidatePaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths("/srv/gpio.yml")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "/srv/gpio.yml", yamlPaths[0], "user path routed by extension and first")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "gpio2uinput.json"), jsonPaths[0])
	assert.Contains(t, jsonPaths, filepath.Join(xdg, "gpio2uinput", "config.json"))
	assert.Contains(t, tomlPaths, filepath.Join(xdg, "gpio2uinput", "config.toml"))
	assert.Contains(t, yamlPaths, "/etc/gpio2uinput/config.yaml")

	jsonPaths, _, _ = configCandidatePaths("/srv/gpio.conf")
	assert.Equal(t, "/srv/gpio.conf", jsonPaths[0], "unknown extension read as JSON")
}

func TestCheckUserConfig(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "gpio2uinput.yaml")
	require.NoError(t, os.WriteFile(present, []byte("chip: /dev/gpiochip4\n"), 0o644))

	assert.NoError(t, checkUserConfig(""), "no explicit file")
	assert.NoError(t, checkUserConfig(present))

	err := checkUserConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.toml")

	assert.ErrorContains(t, checkUserConfig(dir), "is a directory")
}

func TestDefaultConfigDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/pi")
	dir, err := defaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/pi/.config/gpio2uinput", dir)
}

func parseCLI(t *testing.T, args []string, opts ...kong.Option) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	opts = append([]kong.Option{kong.Name("gpio2uinput"), kong.Exit(func(int) { t.Fatal("unexpected exit") })}, opts...)
	parser, err := kong.New(&cli, opts...)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLIDefaults(t *testing.T) {
	cli, ctx := parseCLI(t, nil)
	require.NotNil(t, ctx.Selected())
	assert.Equal(t, "run", ctx.Selected().Name)

	r := cli.Run
	assert.Equal(t, "/dev/gpiochip0", r.Chip)
	assert.Equal(t, 5, r.Start)
	assert.Equal(t, 27, r.End)
	assert.Equal(t, 1000, r.DebounceUs)
	assert.Equal(t, 256, r.EventBuf)
	assert.Equal(t, "buttons", r.Auto)
	assert.True(t, r.Realtime)
	assert.Equal(t, "0x42", r.Bus.Addr)
	assert.Equal(t, 5, r.Bus.IntervalMs)
	assert.Equal(t, 15*time.Minute, r.MQTT.Heartbeat)
	assert.Empty(t, r.HTTP)
	assert.Equal(t, "info", cli.Log.Level)
	assert.Equal(t, "auto", cli.Log.Format)
}

func TestCLIFlags(t *testing.T) {
	cli, _ := parseCLI(t, []string{
		"--chip", "/dev/gpiochip4",
		"--active-high",
		"--no-realtime",
		"--auto", "keys",
		"--i2c.dev", "/dev/i2c-1",
		"--i2c.no-axes",
		"--mqtt.broker", "tcp://10.0.0.2:1883",
		"--log.level", "debug",
	})
	r := cli.Run
	assert.Equal(t, "/dev/gpiochip4", r.Chip)
	assert.True(t, r.ActiveHigh)
	assert.False(t, r.Realtime)
	assert.Equal(t, "keys", r.Auto)
	assert.Equal(t, "/dev/i2c-1", r.Bus.Dev)
	assert.True(t, r.Bus.NoAxes)
	assert.Equal(t, "tcp://10.0.0.2:1883", r.MQTT.Broker)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestCLIRejectsBadEnum(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--auto", "sometimes"})
	assert.Error(t, err)
}

func TestCLIJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpio2uinput.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "chip": "/dev/gpiochip4",
  "debounce_us": 2500,
  "i2c": {"dev": "/dev/i2c-3", "interval_ms": 7},
  "log": {"level": "warn"}
}`), 0o644))

	cli, _ := parseCLI(t, []string{"--debounce-us", "500"}, kong.Configuration(kong.JSON, path))
	r := cli.Run
	assert.Equal(t, "/dev/gpiochip4", r.Chip)
	assert.Equal(t, 500, r.DebounceUs, "flags override the file")
	assert.Equal(t, "/dev/i2c-3", r.Bus.Dev)
	assert.Equal(t, 7, r.Bus.IntervalMs)
	assert.Equal(t, "warn", cli.Log.Level)
}
