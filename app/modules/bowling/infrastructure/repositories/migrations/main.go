package bowlingmigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Migrations registered without explicit IDs take their ID from the
	// caller's file name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
