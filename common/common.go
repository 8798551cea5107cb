// Package common holds small values shared across recast's packages:
// version string, default file names, and similar constants that
// don't deserve their own package.
package common

// Version is the current recast version string.
const Version string = "0.1.0"

// ConfigFileName is the default name for a ConfigStore document on
// disk.
const ConfigFileName string = "recast-config.toml"

// DefaultNameHint is used when a caller materializes a global or
// stack slot without a more specific name in mind.
const DefaultNameHint string = "obj"
