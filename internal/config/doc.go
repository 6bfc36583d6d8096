// Package config loads, normalizes, and validates ytscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// TELEGRAM_TOKEN and WHISPER_MODEL. The Config type centralizes every knob the
// bot and CLI need so credentials, directories, and the transcription model are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
