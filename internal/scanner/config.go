package scanner

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config is the optional on-disk scan configuration, loaded the way the
// teacher's cmd/gorisk/scan/scan.go decodes its policy file, but in YAML
// following internal/capability/patternset.go's embedded-table convention.
type Config struct {
	Version        int    `yaml:"version"`
	Implicit       bool   `yaml:"implicit"`
	MinRisk        string `yaml:"min_risk"`
	MinToolVersion string `yaml:"min_tool_version"`
}

// LoadConfig reads and validates a YAML scan-config file. Unknown fields
// are rejected, matching the teacher's DisallowUnknownFields policy decode.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Version != 0 && cfg.Version != 1 {
		return Config{}, fmt.Errorf("config: unsupported version %d (supported: 1)", cfg.Version)
	}
	return cfg, nil
}

// CheckToolVersion reports whether toolVersion satisfies the config file's
// min_tool_version constraint, using semver comparison the way
// cmd/gorisk/upgrade compares module versions with golang.org/x/mod.
// Non-semver-looking versions (e.g. a "dev" build) always satisfy the
// constraint, since there is nothing meaningful to compare.
func CheckToolVersion(toolVersion, minVersion string) (bool, error) {
	if minVersion == "" {
		return true, nil
	}
	tv, mv := normalizeSemver(toolVersion), normalizeSemver(minVersion)
	if !semver.IsValid(tv) {
		return true, nil
	}
	if !semver.IsValid(mv) {
		return false, fmt.Errorf("invalid min-tool-version %q", minVersion)
	}
	return semver.Compare(tv, mv) >= 0, nil
}

func normalizeSemver(v string) string {
	if len(v) > 0 && v[0] != 'v' {
		return "v" + v
	}
	return v
}
