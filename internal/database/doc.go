// Package database keeps the gallery's import history in SQLite.
//
// Every upload becomes a row in the imports table with its status, counts
// and the log lines shown to the uploader. A small metadata table holds
// process-wide values such as the time of the last successful import.
//
// The catalog itself is not stored here; it lives in memory and is rebuilt
// by each upload. By default the database is in-memory too. Point it at a
// file to keep the history across restarts.
package database
