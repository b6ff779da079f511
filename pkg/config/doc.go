// Package config loads the framework configuration from a YAML or TOML
// file, picked by extension. ${VAR} references are replaced with environment
// variables before decoding, and keys missing from the file keep the values
// of Defaults.
//
//	cfg, err := config.Load("app.yaml")
//	if err != nil {
//		return err
//	}
//
// Load validates the result; Validate joins every problem it finds into one
// error wrapping ErrInvalid.
package config
