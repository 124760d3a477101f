package worldcupmigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Registered migrations take their IDs from the caller file name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
