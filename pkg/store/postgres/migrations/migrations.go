// Package migrations embeds the SQL migration set applied by
// postgres.RunMigrations via golang-migrate's iofs source driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
