package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	sqliteRepos "github.com/yigit/unistud/internal/app/repositories/sqlite"
	"github.com/yigit/unistud/internal/bootstrap"
	"github.com/yigit/unistud/internal/config"
	"github.com/yigit/unistud/internal/db"
	"github.com/yigit/unistud/internal/pkg/logger"
)

// MigrateCommand brings the configured database schema up to date.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			lgr := logger.Configure(logger.Config{
				Level:  logger.ParseLevel(cfg.Logging.Level),
				Pretty: true,
				Output: c.App.ErrWriter,
			})

			ctx := c.Context
			if ctx == nil {
				ctx = context.Background()
			}

			switch cfg.Database.Driver {
			case config.DriverSQLite:
				handle, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath)
				if err != nil {
					return err
				}
				defer handle.Close()
				if err := sqliteRepos.EnsureSchema(ctx, handle); err != nil {
					return err
				}
			default:
				database, err := db.NewPostgresDB(cfg)
				if err != nil {
					return err
				}
				defer database.Close()
				if err := bootstrap.RunMigrations(ctx, database.Pool, lgr); err != nil {
					return err
				}
			}

			fmt.Fprintf(c.App.Writer, "%s schema is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}
