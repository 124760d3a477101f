package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	worldcupmigrations "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/topbun-worldcup/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "worldcup database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"WORLDCUP_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrator opens the database named by --config and hands a migrator to fn.
func withMigrator(c *cli.Context, fn func(*migrate.Migrator) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	return fn(migrate.NewMigrator(db, worldcupmigrations.Migrations))
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("there are no new migrations to run (database is up to date)")
							return nil
						}
						fmt.Printf("migrated to %s\n", group)
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("there are no groups to roll back")
							return nil
						}
						fmt.Printf("rolled back %s\n", group)
						return nil
					})
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						mf, err := m.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("created migration %s (%s)\n", mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "create_sql",
				Usage: "create up and down SQL migrations",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						files, err := m.CreateSQLMigrations(c.Context, name)
						if err != nil {
							return err
						}
						for _, mf := range files {
							fmt.Printf("created migration %s (%s)\n", mf.Name, mf.Path)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("migrations: %s\n", ms)
						fmt.Printf("unapplied migrations: %s\n", ms.Unapplied())
						fmt.Printf("last migration group: %s\n", ms.LastGroup())
						return nil
					})
				},
			},
		},
	}
}
