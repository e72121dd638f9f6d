package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/splat2mc/internal/splat"
)

func TestDefaultConvertConfig(t *testing.T) {
	cfg := DefaultConvertConfig()

	if cfg.MaxParticles == nil || *cfg.MaxParticles != 5000 {
		t.Errorf("Expected MaxParticles 5000, got %v", cfg.MaxParticles)
	}
	if cfg.TargetSize == nil || *cfg.TargetSize != 10.0 {
		t.Errorf("Expected TargetSize 10, got %v", cfg.TargetSize)
	}
	if cfg.CoordinateMode == nil || *cfg.CoordinateMode != "relative" {
		t.Errorf("Expected CoordinateMode 'relative', got %v", cfg.CoordinateMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := &ConvertConfig{}
	if cfg.GetMaxParticles() != 5000 {
		t.Errorf("GetMaxParticles() = %d, want 5000", cfg.GetMaxParticles())
	}
	if cfg.GetTargetSize() != 10.0 {
		t.Errorf("GetTargetSize() = %f, want 10", cfg.GetTargetSize())
	}
	if cfg.GetMinOpacity() != 0.1 {
		t.Errorf("GetMinOpacity() = %f, want 0.1", cfg.GetMinOpacity())
	}
	if cfg.GetCoordinateMode() != "relative" {
		t.Errorf("GetCoordinateMode() = %q", cfg.GetCoordinateMode())
	}
	if !cfg.GetCenter() {
		t.Error("GetCenter() = false, want true")
	}
	if cfg.GetSelection() != "opacity" {
		t.Errorf("GetSelection() = %q", cfg.GetSelection())
	}
	if cfg.GetPackFormat() != 48 {
		t.Errorf("GetPackFormat() = %d, want 48", cfg.GetPackFormat())
	}
	if cfg.GetPreview() {
		t.Error("GetPreview() = true, want false")
	}
	if cfg.GetWorkers() != 4 {
		t.Errorf("GetWorkers() = %d, want 4", cfg.GetWorkers())
	}
}

func TestLoadConvertConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "convert.json")

	testJSON := `{
  "max_particles": 1200,
  "min_opacity": 0.25,
  "coordinate_mode": "absolute",
  "selection": "random",
  "seed": 99
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConvertConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetMaxParticles() != 1200 {
		t.Errorf("GetMaxParticles() = %d, want 1200", cfg.GetMaxParticles())
	}
	// Unset fields keep their defaults.
	if cfg.GetTargetSize() != 10.0 {
		t.Errorf("GetTargetSize() = %f, want default 10", cfg.GetTargetSize())
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Coords != splat.CoordsAbsolute || opts.Policy != splat.PolicyRandom {
		t.Errorf("Options() = %+v", opts)
	}
	if opts.MinOpacity != 0.25 || opts.MaxParticles != 1200 || !opts.Center {
		t.Errorf("Options() = %+v", opts)
	}
	if opts.Rand == nil {
		t.Error("a seed should produce a generator")
	}
}

func TestLoadConvertConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantSub string
	}{
		{"extension", write("convert.yaml", "{}"), ".json extension"},
		{"missing", filepath.Join(tmpDir, "nope.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"bad mode", write("mode.json", `{"coordinate_mode": "local"}`), "coordinate_mode"},
		{"bad selection", write("sel.json", `{"selection": "nearest"}`), "selection"},
		{"bad workers", write("workers.json", `{"workers": 0}`), "workers"},
		{"bad pack format", write("pack.json", `{"pack_format": -1}`), "pack_format"},
		{"bad opacity", write("op.json", `{"min_opacity": 2}`), "min opacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConvertConfig(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_InvalidParameterIsWrapped(t *testing.T) {
	cfg := &ConvertConfig{MaxParticles: ptrInt(0)}
	if err := cfg.Validate(); !errors.Is(err, splat.ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	def := DefaultConvertConfig()
	if cfg.GetMaxParticles() != def.GetMaxParticles() ||
		cfg.GetTargetSize() != def.GetTargetSize() ||
		cfg.GetMinOpacity() != def.GetMinOpacity() ||
		cfg.GetPackFormat() != def.GetPackFormat() ||
		cfg.GetWorkers() != def.GetWorkers() {
		t.Errorf("defaults file drifted from DefaultConvertConfig: %+v", cfg)
	}
}
