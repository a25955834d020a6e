package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ConfigFileName is stored next to the task data.
const ConfigFileName = "telemetry.json"

// Config holds the telemetry state.
type Config struct {
	Enabled     bool   `json:"enabled"`
	AnonymousID string `json:"anonymous_id"`
}

// LoadConfig reads dir/telemetry.json, creating it with a fresh anonymous id
// when missing. enabled always reflects the caller's setting.
func LoadConfig(fs afero.Fs, dir string, enabled bool) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	cfg := &Config{}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse telemetry config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}

	changed := cfg.Enabled != enabled
	cfg.Enabled = enabled
	if cfg.AnonymousID == "" {
		cfg.AnonymousID = uuid.NewString()
		changed = true
	}
	if !changed {
		return cfg, nil
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal telemetry config: %w", err)
	}
	if err := afero.WriteFile(fs, path, out, 0o600); err != nil {
		return nil, fmt.Errorf("write telemetry config: %w", err)
	}
	return cfg, nil
}
