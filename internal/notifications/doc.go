// Package notifications sends operator alerts to ntfy.
//
// The bot announces startup and reports unexpected pipeline failures. Without
// a configured topic the package degrades to a no-op so callers never branch
// on whether alerts are enabled.
package notifications
