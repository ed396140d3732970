// Package config loads the Bodega configuration file.
//
// # Overview
//
// Bodega reads a small TOML file describing where the remote administration
// API lives and how patient the client should be with it. Every field is
// optional; a missing file is not an error and yields Default().
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/bodega/config.toml
//  3. If the file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	base_url = "https://api.example.pe/api"
//	alt_url = "https://api.example.pe"      # bare domain for the alternate probe
//	primary_endpoint = "/clientes"          # listing endpoint for the primary probe
//	request_timeout = "30s"                 # domain calls
//	probe_timeout = "5s"                    # each connectivity check
//	poll_interval = "30s"
//	page_size = 15
//	log_level = "info"
//	log_file = "~/.local/share/bodega/bodega.log"
//	session_path = "~/.config/bodega/session.toml"
//
// When alt_url is omitted it is derived from base_url by dropping the path.
// Durations use time.ParseDuration syntax; zero or negative values fall back
// to the defaults.
//
// # Path Expansion
//
// log_file, session_path and the config location itself accept "~" and
// relative paths; both are resolved to absolute paths.
package config
