// Package provider implements the concrete TargetProvider transports wired
// in this expansion (§4.5): Azure Blob, Azure File, S3-compatible, GCS, and
// plain UNC/local filesystem.
package provider

import (
	"github.com/eastfield/archivist/internal/model"
)

func stringSetting(target model.TargetDef, key string) string {
	if v, ok := target.TargetSpecificSettings[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func boolSetting(target model.TargetDef, key string, def bool) bool {
	if v, ok := target.TargetSpecificSettings[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func requireString(target model.TargetDef, key string) (string, error) {
	v := stringSetting(target, key)
	if v == "" {
		return "", model.ConfigError("target %q: TargetSpecificSettings.%s is required", target.Type, key)
	}
	return v, nil
}
