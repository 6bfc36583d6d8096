// Package daemon supervises the long-running ytscribe bot process.
//
// It wraps the Telegram polling loop with flock-based locking so two bots never
// poll the same token from one host, waits for in-flight requests on shutdown,
// and lets the CLI probe whether an instance is already running.
package daemon
