// Package migrations содержит SQL-миграции схемы в формате goose.
// SQL переносим между SQLite и PostgreSQL.
package migrations

import "embed"

// FS - встроенные файлы миграций.
//
//go:embed *.sql
var FS embed.FS
