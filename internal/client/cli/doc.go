// Package cli is the line-oriented groupshare client: a read-eval-print loop
// that maps typed commands onto protocol requests and keeps the
// reauthentication cookie on disk between runs.
package cli
