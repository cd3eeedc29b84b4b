// Package project reads and writes saved compare setups.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sdejongh/dircmp/pkg/models"
)

// Project is a saved set of roots and filters.
// Relative paths are resolved against the project file's directory.
type Project struct {
	Left       string               `yaml:"left"`
	Middle     string               `yaml:"middle,omitempty"`
	Right      string               `yaml:"right"`
	Exclude    []string             `yaml:"exclude,omitempty"`
	Skip       []string             `yaml:"skip,omitempty"`
	Subfolders bool                 `yaml:"subfolders"`
	Method     models.CompareMethod `yaml:"method,omitempty"`
}

// Validate checks that both outer roots are set
func (p *Project) Validate() error {
	if p.Left == "" {
		return &models.ValidationError{Field: "left", Message: "left path is required"}
	}
	if p.Right == "" {
		return &models.ValidationError{Field: "right", Message: "right path is required"}
	}
	if p.Method != "" && !p.Method.IsValid() {
		return &models.ValidationError{Field: "method", Message: "unknown compare method: " + string(p.Method)}
	}
	return nil
}

// Paths returns the roots in left, middle, right order, skipping an empty middle
func (p *Project) Paths() []string {
	if p.Middle == "" {
		return []string{p.Left, p.Right}
	}
	return []string{p.Left, p.Middle, p.Right}
}

// Load reads a project file and resolves its paths
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	p := &Project{Subfolders: true}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project %s: %w", path, err)
	}

	base := filepath.Dir(path)
	p.Left = resolve(base, p.Left)
	p.Middle = resolve(base, p.Middle)
	p.Right = resolve(base, p.Right)
	return p, nil
}

// Save writes the project file
func Save(p *Project, path string) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
