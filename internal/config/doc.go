// Package config loads, normalizes, and validates Vouch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and GOOGLE_API_KEY. A .env file in the working directory is
// read first so local runs can keep credentials out of the TOML file. The
// Config type centralizes every knob the CLI and HTTP server need so each
// pipeline component receives its settings explicitly through its constructor.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
