// Package datapack lays out a Minecraft datapack around a generated
// particle function.
//
// A bundle for a scene named "garden" looks like:
//
//	splat_garden/
//	  pack.mcmeta
//	  splat2mc.json
//	  data/splats/function/garden.mcfunction
//	  data/splats/function/help.mcfunction
package datapack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/splat2mc/internal/fsutil"
	"github.com/banshee-data/splat2mc/internal/security"
)

// Namespace is the datapack namespace every splat function lives under.
const Namespace = "splats"

// DefaultPackFormat targets Minecraft 1.21.
const DefaultPackFormat = 48

// ManifestFile is the name of the run manifest at the bundle root.
const ManifestFile = "splat2mc.json"

// Bundle is everything needed to write one datapack.
type Bundle struct {
	// Name is the scene name shown in the pack description, usually the
	// input file stem. The directory and function names are derived from
	// it with security.DatapackName.
	Name       string
	PackFormat int
	Script     []byte
	Manifest   *Manifest
}

// Manifest records how a bundle was produced.
type Manifest struct {
	RunID       string          `json:"run_id"`
	Generator   string          `json:"generator"`
	Version     string          `json:"version"`
	Source      string          `json:"source"`
	Layout      string          `json:"layout"`
	GeneratedAt time.Time       `json:"generated_at"`
	Options     ManifestOptions `json:"options"`
	Counts      ManifestCounts  `json:"counts"`
}

// ManifestOptions are the pipeline settings of the run.
type ManifestOptions struct {
	MaxParticles int     `json:"max_particles"`
	TargetSize   float64 `json:"target_size"`
	MinOpacity   float64 `json:"min_opacity"`
	Coordinates  string  `json:"coordinate_mode"`
	Center       bool    `json:"center"`
	Selection    string  `json:"selection"`
	Seed         *int64  `json:"seed,omitempty"`
}

// ManifestCounts are the splat counts at each pipeline stage.
type ManifestCounts struct {
	Decoded  int `json:"decoded"`
	Selected int `json:"selected"`
	Lines    int `json:"lines"`
	Skipped  int `json:"skipped"`
}

// Paths are the files written for a bundle.
type Paths struct {
	Root     string
	Meta     string
	Function string
	Help     string
	Manifest string // empty when no manifest was written
}

// Writer writes bundles through a FileSystem.
type Writer struct {
	FS fsutil.FileSystem
	// ValidatePath, when set, is called with each file path and the output
	// directory before writing, for checks that need the real filesystem
	// such as symlink resolution.
	ValidatePath func(path, dir string) error
}

// NewWriter returns a Writer on fs.
func NewWriter(fs fsutil.FileSystem) *Writer {
	return &Writer{FS: fs}
}

// FunctionName returns the in-game function identifier for a scene,
// e.g. "splats:garden".
func FunctionName(name string) string {
	return Namespace + ":" + security.DatapackName(name)
}

// DirName returns the bundle directory name for a scene.
func DirName(name string) string {
	return "splat_" + security.DatapackName(name)
}

// Write creates the bundle for b under outDir and returns the written
// paths. Existing files are overwritten.
func (w *Writer) Write(outDir string, b Bundle) (Paths, error) {
	safe := security.DatapackName(b.Name)
	format := b.PackFormat
	if format <= 0 {
		format = DefaultPackFormat
	}

	var p Paths
	var err error
	if p.Root, err = security.JoinWithin(outDir, DirName(b.Name)); err != nil {
		return Paths{}, err
	}
	fnDir := filepath.Join(p.Root, "data", Namespace, "function")
	p.Meta = filepath.Join(p.Root, "pack.mcmeta")
	p.Function = filepath.Join(fnDir, safe+".mcfunction")
	p.Help = filepath.Join(fnDir, "help.mcfunction")

	if err := w.FS.MkdirAll(fnDir, 0755); err != nil {
		return Paths{}, fmt.Errorf("create %s: %w", fnDir, err)
	}

	meta, err := encodeJSON(packMeta{Pack: packInfo{
		PackFormat:  format,
		Description: "3D Gaussian Splat: " + b.Name,
	}})
	if err != nil {
		return Paths{}, err
	}
	files := []struct {
		path string
		data []byte
	}{
		{p.Meta, meta},
		{p.Function, b.Script},
		{p.Help, helpScript(safe)},
	}
	if b.Manifest != nil {
		p.Manifest = filepath.Join(p.Root, ManifestFile)
		data, err := encodeJSON(b.Manifest)
		if err != nil {
			return Paths{}, err
		}
		files = append(files, struct {
			path string
			data []byte
		}{p.Manifest, data})
	}

	for _, f := range files {
		if w.ValidatePath != nil {
			if err := w.ValidatePath(f.path, outDir); err != nil {
				return Paths{}, err
			}
		}
		if err := w.FS.WriteFile(f.path, f.data, 0644); err != nil {
			return Paths{}, fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return p, nil
}

type packMeta struct {
	Pack packInfo `json:"pack"`
}

type packInfo struct {
	PackFormat  int    `json:"pack_format"`
	Description string `json:"description"`
}

func helpScript(safe string) []byte {
	return fmt.Appendf(nil,
		"tellraw @s {\"text\":\"Available splats: %s\",\"color\":\"green\"}\n"+
			"tellraw @s {\"text\":\"Run: /function %s:%s\",\"color\":\"gray\"}",
		safe, Namespace, safe)
}

// encodeJSON indents with two spaces and leaves <, > and & unescaped so
// descriptions read as typed.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadManifest loads the manifest of the bundle rooted at dir.
func ReadManifest(fs fsutil.FileSystem, dir string) (*Manifest, error) {
	data, err := fs.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	return &m, nil
}
