// Package config loads museum settings from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/museum/config.toml (or
// ~/.config/museum/config.toml) and every key is optional:
//
//	[spotify]
//	client_id = "0123456789abcdef"
//	time_range = "long_term"
//
//	[layout]
//	width = 1200
//	height = 800
//	filler_density = 0.5
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// Environment variables override the file (see [Config.ApplyEnv]) and
// command-line flags override both.
package config
