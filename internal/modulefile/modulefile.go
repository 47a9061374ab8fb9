// Package modulefile reads the optional .eon-module.yaml manifest a module
// directory can carry: the entry file to compile and the shared objects it
// needs loaded before running. The file provider contract itself is
// free-form (see spec.md §6); a YAML manifest is simply the obvious place
// the CLI's module resolver looks first, the way a Go module looks for
// go.mod before falling back to GOPATH conventions.
package modulefile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = ".eon-module.yaml"

// Manifest describes one module directory.
type Manifest struct {
	// Entry is the module's entry source file, relative to the manifest's
	// directory. Defaults to "main.en" when the manifest omits it.
	Entry string `yaml:"entry"`

	// SharedObjects lists the foreign libraries (by the name a
	// ForeignFuncDecl's Library names) this module's extern calls resolve
	// against, searched for in the CLI's --shared-objects directory.
	SharedObjects []string `yaml:"shared_objects"`
}

// Load reads dir's manifest, if present. A missing manifest is not an
// error: it returns a zero-valued Manifest with Entry defaulted, the same
// way a module with no .eon-module.yaml still resolves to main.en.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Entry: "main.en"}, nil
		}
		return nil, fmt.Errorf("modulefile: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("modulefile: parsing %s: %w", path, err)
	}
	if m.Entry == "" {
		m.Entry = "main.en"
	}
	return &m, nil
}
