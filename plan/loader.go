package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/transducekit/errors"
)

// Loader loads plan definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
	List() ([]string, error)
}

var extensions = []string{".yaml", ".yml"}

// FileLoader loads plans from YAML files on disk. A plan named n lives in
// n.yaml or n.yml directly under a configured directory or one level below.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches the configured directories in order.
func (l *FileLoader) Load(name string) (*Definition, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, errors.InvalidInput("name", "must be a plain plan name")
	}
	for _, dir := range l.dirs {
		for _, ext := range extensions {
			path := filepath.Join(dir, name+ext)
			if fileExists(path) {
				return LoadFile(path)
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			if len(matches) > 0 {
				return LoadFile(matches[0])
			}
		}
	}
	return nil, errors.NotFound("plan", name)
}

// List returns the sorted names of every plan file in the configured
// directories.
func (l *FileLoader) List() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range l.dirs {
		for _, pattern := range []string{"*", filepath.Join("*", "*")} {
			for _, ext := range extensions {
				matches, err := filepath.Glob(filepath.Join(dir, pattern+ext))
				if err != nil {
					return nil, fmt.Errorf("plan: listing %s: %w", dir, err)
				}
				for _, m := range matches {
					seen[strings.TrimSuffix(filepath.Base(m), ext)] = true
				}
			}
		}
	}
	return sortedKeys(seen), nil
}

// LoadFile reads and parses one plan file. A definition without a name
// takes the file's base name.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: reading %s: %w", path, err)
	}
	def, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("plan: parsing %s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("plan: %s: %w", path, err)
	}
	return def, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// staticLoader serves definitions held in memory.
type staticLoader map[string]*Definition

// Static returns a Loader over the given definitions, keyed by name.
func Static(defs ...*Definition) Loader {
	m := make(staticLoader, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return m
}

func (s staticLoader) Load(name string) (*Definition, error) {
	if d, ok := s[name]; ok {
		return d, nil
	}
	return nil, errors.NotFound("plan", name)
}

func (s staticLoader) List() ([]string, error) {
	return sortedKeys(s), nil
}
