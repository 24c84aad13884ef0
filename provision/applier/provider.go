package applier

import (
	"fmt"
	"io/fs"
	"sort"
)

// ScriptProvider provides a list of grants scripts
type ScriptProvider interface {
	// Scripts provides a list of scripts sorted by number in ascending order
	Scripts() []*Script
}

// RegisteredScriptProvider is a simple in-memory implementation of ScriptProvider
type RegisteredScriptProvider struct {
	scripts []*Script
	sorted  bool
}

// NewRegisteredScriptProvider creates a new in-memory script provider with the
// given scripts. The scripts are sorted by number when accessed through the
// Scripts() method.
func NewRegisteredScriptProvider(scripts ...*Script) *RegisteredScriptProvider {
	return &RegisteredScriptProvider{
		scripts: scripts,
	}
}

// Register adds a script to the provider
func (p *RegisteredScriptProvider) Register(script *Script) {
	p.scripts = append(p.scripts, script)
	p.sorted = false
}

// Scripts returns the list of scripts sorted by number in ascending order
func (p *RegisteredScriptProvider) Scripts() []*Script {
	p.maybeSort()
	return p.scripts
}

func (p *RegisteredScriptProvider) maybeSort() {
	if p.sorted {
		return
	}
	sortScripts(p.scripts)
	p.sorted = true
}

// FSScriptProvider is a script provider that loads grants scripts from a
// filesystem. It scans for files following the NNN_grant_<schema>.sql naming
// convention, typically the per-service output directory of the generator.
type FSScriptProvider struct {
	fsys    fs.FS
	scripts []*Script
}

// NewFSScriptProvider creates a new filesystem-based script provider. It
// scans the provided filesystem for grants script files. Returns an error if
// the filesystem cannot be scanned or if two files carry the same number.
func NewFSScriptProvider(fsys fs.FS) (*FSScriptProvider, error) {
	p := &FSScriptProvider{fsys: fsys}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Scripts returns the scripts loaded from the filesystem, sorted by number in
// ascending order.
func (p *FSScriptProvider) Scripts() []*Script {
	return p.scripts
}

func (p *FSScriptProvider) load() error {
	seen := make(map[int]string) // number -> filename

	err := fs.WalkDir(p.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		scriptFile, err := ParseScriptFileName(d.Name())
		if err != nil {
			// Skip files that don't match the naming convention
			return nil
		}

		if other, exists := seen[scriptFile.Number]; exists {
			return fmt.Errorf("duplicate script number %d: %s and %s", scriptFile.Number, other, d.Name())
		}
		seen[scriptFile.Number] = d.Name()

		p.scripts = append(p.scripts, &Script{
			Number: scriptFile.Number,
			Schema: scriptFile.Schema,
			Up:     ScriptFuncFromSQLFilename(path, p.fsys),
		})

		return nil
	})

	if err != nil {
		p.scripts = nil
		return fmt.Errorf("failed to scan scripts directory: %w", err)
	}

	sortScripts(p.scripts)

	return nil
}

func sortScripts(scripts []*Script) {
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Number < scripts[j].Number
	})
}
