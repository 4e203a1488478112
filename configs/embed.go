// Package configs provides ahnlichd's embedded example configuration,
// baked into the binary with //go:embed so it is available without the
// source tree (source builds, binary releases, packaged installs alike).
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config.NewConfig())
//  2. YAML file passed via `ahnlichd run --config`
//  3. AHNLICH_*-prefixed environment variables
//  4. CLI flags (highest precedence)
package configs

import _ "embed"

// ExampleConfig is the template `ahnlichd config init` writes out as a
// starting point for `ahnlichd run --config`; every field mirrors
// internal/config.Config's schema.
//
//go:embed ahnlichd.example.yaml
var ExampleConfig string
