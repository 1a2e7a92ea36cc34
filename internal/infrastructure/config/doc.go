// Package config provides YAML-based configuration loading for SoilSense Core.
//
// Configuration is loaded in three layers, each overriding the last:
// hardcoded defaults, the YAML file, and SOILSENSE_* environment variables.
// A loaded Config has passed Validate() and can be used as-is.
package config
