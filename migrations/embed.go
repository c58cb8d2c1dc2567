// Package migrations содержит SQL миграции схемы планирования
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
