// Package config provides configuration management for censyscollect.
//
// Configuration comes from three places, in increasing precedence:
//   - built-in defaults (NewConfig)
//   - an optional YAML file (.censyscollect in the current or home directory)
//   - CLI flags
//
// API credentials are deliberately excluded from the file and flags: they
// are read only from the CENSYS_API_ID and CENSYS_API_SECRET environment
// variables (see LoadCredentials), so they never end up in shell history
// or committed config files.
package config
