// Package config defines the root command line of embody.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/ssfrr/embody/internal/cmd"
)

// Log holds the logging flags shared by every command.
type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"EMBODY_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" type:"path" env:"EMBODY_LOG_FILE"`
}

type CLI struct {
	Log     Log              `embed:"" prefix:"log."`
	Config  string           `help:"CLI settings file (json, yaml or toml)" type:"path" env:"EMBODY_CONFIG"`
	Workdir string           `short:"C" help:"Resolve project configuration as if started in this directory" type:"existingdir"`
	Version kong.VersionFlag `help:"Print version information and exit"`

	Fake   cmd.Fake          `cmd:"" help:"Generate a fake source and header from a C header"`
	Module cmd.Module        `cmd:"" help:"Scaffold a new module with source, header and test files"`
	Cfg    cmd.ConfigCommand `cmd:"" name:"config" help:"Inspect or initialize configuration"`
}
