// Package command provides the unistudctl command definitions.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yigit/unistud/internal/config"
)

// Version is set via ldflags.
var Version = "dev"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "unistudctl",
		Usage:   "UniStud operator tool",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   config.DefaultConfigPath,
			},
		},
		Commands: []*cli.Command{
			KeygenCommand(),
			TokenCommand(),
			MigrateCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}
