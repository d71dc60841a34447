// Package cli implements the animc command line tool.
//
// Every command runs in-process against the default capability table, or
// against a running preview server when --remote is set. Configuration is
// read the same way the server reads it: environment variables over an
// optional YAML or TOML file.
package cli
