// Package database stores esgscan run history in SQLite.
//
// Each run is recorded per company together with the scrape results and
// harvested PDF links, so that later runs can be listed and compared.
// The driver is modernc.org/sqlite, which needs no cgo.
package database
