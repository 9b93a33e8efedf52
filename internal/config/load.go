// Package config implements ConfigResolver (§4.1): loading the layered
// defaults+overlay YAML configuration, merging it into a GlobalConfig, and
// resolving one job's EffectiveJobConfig from GlobalConfig ∘ JobDef ∘
// SetDef ∘ CliOverrides.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/eastfield/archivist/internal/model"
)

// rawDoc is the on-disk shape: a loose map so unknown keys survive the
// decode instead of erroring, per §9 ("Unknown keys from the input file are
// retained in a side extras map for forward-compat warnings").
type rawDoc map[string]any

// Load reads the read-only defaults file and, if overlayPath is non-empty,
// a user overlay, deep-merges overlay over defaults, and decodes the result
// into a GlobalConfig. Keys the struct doesn't recognise land in
// GlobalConfig.Extras rather than failing the load.
func Load(defaultsPath, overlayPath string) (*model.GlobalConfig, error) {
	defaults, err := readYAML(defaultsPath)
	if err != nil {
		return nil, model.WrapError(model.KindConfig, err, "reading defaults file %q", defaultsPath)
	}
	merged := defaults
	if overlayPath != "" {
		overlay, err := readYAML(overlayPath)
		if err != nil {
			return nil, model.WrapError(model.KindConfig, err, "reading overlay file %q", overlayPath)
		}
		merged = deepMergeMaps(defaults, overlay)
	}
	return decodeGlobalConfig(merged)
}

func readYAML(path string) (rawDoc, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var doc rawDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.WithStack(err)
	}
	if doc == nil {
		doc = rawDoc{}
	}
	return doc, nil
}

// deepMergeMaps merges src over base: maps merge recursively, everything
// else (scalars, arrays) is replaced wholesale, per §4.1's merge rule.
func deepMergeMaps(base, src rawDoc) rawDoc {
	out := make(rawDoc, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range src {
		if srcMap, ok := asMap(v); ok {
			if baseMap, ok := asMap(out[k]); ok {
				out[k] = deepMergeMaps(baseMap, srcMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (rawDoc, bool) {
	switch m := v.(type) {
	case rawDoc:
		return m, true
	case map[string]any:
		return rawDoc(m), true
	default:
		return nil, false
	}
}

// recognisedTopLevelKeys lists every key GlobalConfig understands; anything
// else is preserved in Extras and flagged by the caller at WARNING (§6).
var recognisedTopLevelKeys = map[string]bool{
	"SevenZipPath": true, "DefaultDestinationDir": true,
	"DefaultScriptExcludeRecycleBin": true, "DefaultScriptExcludeSysVolInfo": true,
	"DefaultAdditionalExclusions": true, "EnableVSS": true,
	"TreatSevenZipWarningsAsSuccess": true, "DeleteLocalArchiveAfterSuccessfulTransfer": true,
	"BackupTargets": true, "BackupLocations": true, "BackupSets": true,
	"PostRunActionDefaults": true, "MaintenanceModeFilePath": true, "LogRetentionCount": true,
}

func decodeGlobalConfig(doc rawDoc) (*model.GlobalConfig, error) {
	gc := &model.GlobalConfig{
		BackupTargets:   map[string]model.TargetDef{},
		BackupLocations: map[string]model.JobDef{},
		BackupSets:      map[string]model.SetDef{},
		Extras:          map[string]any{},
	}

	if v, ok := doc["SevenZipPath"].(string); ok {
		gc.SevenZipPath = v
	}
	if v, ok := doc["DefaultDestinationDir"].(string); ok {
		gc.DefaultDestinationDir = v
	}
	if v, ok := doc["DefaultScriptExcludeRecycleBin"].(bool); ok {
		gc.DefaultScriptExcludeRecycleBin = v
	}
	if v, ok := doc["DefaultScriptExcludeSysVolInfo"].(bool); ok {
		gc.DefaultScriptExcludeSysVolInfo = v
	}
	gc.DefaultAdditionalExclusions = stringList(doc["DefaultAdditionalExclusions"])
	if v, ok := doc["EnableVSS"].(bool); ok {
		gc.EnableVSS = v
	}
	if v, ok := doc["TreatSevenZipWarningsAsSuccess"].(bool); ok {
		gc.TreatSevenZipWarningsAsSuccess = v
	}
	if v, ok := doc["DeleteLocalArchiveAfterSuccessfulTransfer"].(bool); ok {
		gc.DeleteLocalArchiveAfterSuccessfulTransfer = v
	}
	if v, ok := doc["MaintenanceModeFilePath"].(string); ok {
		gc.MaintenanceModeFilePath = v
	}
	if v, ok := asInt(doc["LogRetentionCount"]); ok {
		gc.LogRetentionCount = v
	}
	if pra, ok := asMap(doc["PostRunActionDefaults"]); ok {
		gc.PostRunActionDefaults = decodePostRunAction(pra)
	}

	if targets, ok := asMap(doc["BackupTargets"]); ok {
		for name, raw := range targets {
			tm, ok := asMap(raw)
			if !ok {
				continue
			}
			gc.BackupTargets[name] = decodeTargetDef(tm)
		}
	}
	if jobs, ok := asMap(doc["BackupLocations"]); ok {
		for name, raw := range jobs {
			jm, ok := asMap(raw)
			if !ok {
				continue
			}
			jd, err := decodeJobDef(jm)
			if err != nil {
				return nil, model.WrapError(model.KindConfig, err, "job %q", name)
			}
			gc.BackupLocations[name] = jd
		}
	}
	if sets, ok := asMap(doc["BackupSets"]); ok {
		for name, raw := range sets {
			sm, ok := asMap(raw)
			if !ok {
				continue
			}
			gc.BackupSets[name] = decodeSetDef(sm)
		}
	}

	for k, v := range doc {
		if !recognisedTopLevelKeys[k] {
			gc.Extras[k] = v
		}
	}

	return gc, nil
}

func decodeTargetDef(m rawDoc) model.TargetDef {
	td := model.TargetDef{}
	if v, ok := m["Type"].(string); ok {
		td.Type = v
	}
	if v, ok := m["CredentialsSecretName"].(string); ok {
		td.CredentialsSecretName = v
	}
	if settings, ok := asMap(m["TargetSpecificSettings"]); ok {
		td.TargetSpecificSettings = settings
	}
	if rr, ok := asMap(m["RemoteRetentionSettings"]); ok {
		if kc, ok := asInt(rr["KeepCount"]); ok {
			td.RemoteRetentionSettings.KeepCount = kc
		}
	}
	return td
}

func decodeSetDef(m rawDoc) model.SetDef {
	sd := model.SetDef{JobNames: stringList(m["JobNames"])}
	if v, ok := m["OnErrorInJob"].(string); ok {
		_ = sd.OnErrorInJob.Parse(v)
	}
	if v, ok := asInt(m["LogRetentionCount"]); ok {
		sd.LogRetentionCount = model.Some(v)
	}
	if pra, ok := asMap(m["PostRunAction"]); ok {
		sd.PostRunAction = model.Some(decodePostRunAction(pra))
	}
	return sd
}

func decodePostRunAction(m rawDoc) model.PostRunActionConfig {
	pra := model.PostRunActionConfig{}
	if v, ok := m["Action"].(string); ok {
		_ = pra.Action.Parse(v)
	}
	if v, ok := m["Enabled"].(bool); ok {
		pra.Enabled = v
	}
	return pra
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
