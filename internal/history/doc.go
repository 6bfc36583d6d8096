// Package history keeps a SQLite log of handled messages.
//
// One row is written per incoming message once the pipeline finishes. Rows
// hold routing and outcome metadata only; transcript text is never stored.
// The database lives in the configured state directory and uses WAL mode so
// the CLI can read while the bot writes.
package history
