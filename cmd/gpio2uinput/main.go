// Command gpio2uinput turns GPIO button edges and an I2C input expander
// into virtual gamepad and keyboard events.
package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/sweeney/gpio2uinput/internal/log"
)

// configEnv names the environment variable holding a config file path.
const configEnv = "GPIO2UINPUT_CONFIG"

func main() {
	userCfg := findUserConfig(os.Args[1:])
	if err := checkUserConfig(userCfg); err != nil {
		_, _ = os.Stderr.WriteString("gpio2uinput: " + err.Error() + "\n")
		os.Exit(1)
	}
	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gpio2uinput"),
		kong.Description("GPIO and I2C expander inputs to virtual gamepad and keyboard"),
		kong.UsageOnError(),
		// Flags and env vars override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(configEnv)
}
