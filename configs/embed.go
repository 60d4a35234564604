// Package configs carries the configuration templates that ship inside
// the cosim binary.
//
// The YAML files in this directory are compiled in via go:embed, so
// `cosim config init` can write a starter config without any files being
// installed alongside the binary. Layering happens in
// internal/config.Load: built-in defaults, then the user config at
// ~/.config/cosim/config.yaml, then a project-local .cosim.yaml, then
// COSIM_* environment variables.
//
// Editing a template means editing the .yaml file here; the next build
// picks it up.
package configs

import _ "embed"

// UserConfigTemplate seeds ~/.config/cosim/config.yaml via
// `cosim config init`. It holds machine-level settings such as the
// Ollama host and the log location.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the starter .cosim.yaml, dropped by hand next
// to the texts being compared. It holds per-directory settings such as
// picker defaults.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
