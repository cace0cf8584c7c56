// Package config loads runtime configuration for the groupshare client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the server
//	-k string   file holding the reauthentication cookie
//	-t int      per-request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_addr": "127.0.0.1:5500",
//	  "cookie_file": "/home/me/.config/groupshare/cookie",
//	  "timeout": "10s"
//	}
package config
