package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/joho/godotenv"

	"github.com/ssfrr/embody/internal/cmd"
	"github.com/ssfrr/embody/internal/codegen/common"
	"github.com/ssfrr/embody/internal/codegen/cparse"
	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/config"
	"github.com/ssfrr/embody/internal/configpaths"
	"github.com/ssfrr/embody/internal/log"
	"github.com/ssfrr/embody/internal/projectconfig"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	version, err := common.GetVersion()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("embody"),
		kong.Description("Generate fakes and module scaffolding for embedded C projects"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
			"parsers": strings.Join(cparse.Backends(), ", "),
		},
		// Load CLI settings from JSON/YAML/TOML in priority order; flags/env override them.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	resolver := projectconfig.NewResolver(projectconfig.Options{
		WorkDir:    cli.Workdir,
		InstallDir: configpaths.InstallDir(),
		Logger:     logger,
	})

	ctx.Bind(logger)
	ctx.Bind(resolver)
	ctx.BindTo(cmd.NewTerminalPrompter(), (*output.Confirmer)(nil))

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
	if v := os.Getenv("EMBODY_CONFIG"); v != "" {
		return v
	}
	return ""
}
