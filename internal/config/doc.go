// Package config provides configuration loading and validation for the
// mocopi parsing service. It handles YAML-based configuration with struct
// validation and sensible defaults for the stock mocopi app settings.
package config
