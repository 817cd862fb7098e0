package demo_configs

import (
	"embed"
)

// FS provides embedded sample pub policies for external usage.
//
//go:embed *.yaml *.json *.toml
var FS embed.FS
