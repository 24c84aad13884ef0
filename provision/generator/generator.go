// Package generator writes grants scripts for platform services.
//
// For each service the generator renders the grants template with the
// service's schema name and writes the result as a sequentially numbered SQL
// file under a per-service directory:
//
//	<output-dir>/<service>/001_grant_<schema>.sql
//
// Generated files are created once and never mutated. The next free number
// is found by scanning the target directory, so regenerating for a service
// produces a new file rather than overwriting history.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/giamma80/gymbro-platform-sub001/core/grants"
	"github.com/giamma80/gymbro-platform-sub001/core/registry"
	"github.com/giamma80/gymbro-platform-sub001/provision/applier"
)

// GenerateOptions contains options for grants script generation
type GenerateOptions struct {
	// Service is the resolved service the script is generated for
	Service registry.Service
	// OutputDir is the base directory; the per-service directory is created
	// beneath it. Defaults to "sql".
	OutputDir string
	// Template overrides the embedded grants template (optional)
	Template string
	// Now overrides the clock used for the header timestamp (tests)
	Now func() time.Time
}

// GeneratedScript describes the script file written by Generate
type GeneratedScript struct {
	Path   string // path of the written file
	Number int    // sequential script number
	SQL    string // full file contents
}

// Generate renders the grants template for the service's schema and writes it
// as the next numbered script file in the service directory.
func Generate(opts GenerateOptions) (*GeneratedScript, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "sql"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	template := opts.Template
	if template == "" {
		template = grants.Template()
	}

	rendered, err := grants.RenderTemplate(template, opts.Service.Schema)
	if err != nil {
		return nil, fmt.Errorf("error rendering grants template: %w", err)
	}

	serviceDir := filepath.Join(opts.OutputDir, opts.Service.Name)
	if err := os.MkdirAll(serviceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create service directory: %w", err)
	}

	number, err := NextScriptNumber(serviceDir)
	if err != nil {
		return nil, err
	}

	header := fmt.Sprintf("-- Grants script for %s (service %s)\n-- Schema: %s\n-- Generated on: %s\n\n",
		opts.Service.Title(), opts.Service.Name, opts.Service.Schema, now().Format(time.RFC3339))
	contents := header + rendered

	filePath := filepath.Join(serviceDir, applier.ScriptFileName(number, opts.Service.Schema))

	for {
		info, err := os.Stat(filePath)
		if err != nil || info.Size() == 0 {
			break
		}

		number++
		filePath = filepath.Join(serviceDir, applier.ScriptFileName(number, opts.Service.Schema))
	}

	if err := os.WriteFile(filePath, []byte(contents), 0644); err != nil { //nolint:gosec // 0644 is fine
		return nil, fmt.Errorf("failed to write grants script: %w", err)
	}

	slog.Debug("Generated grants script", "service", opts.Service.Name, "path", filePath, "number", number)

	return &GeneratedScript{
		Path:   filePath,
		Number: number,
		SQL:    contents,
	}, nil
}

// NextScriptNumber scans a service directory for existing grants scripts and
// returns the next unused number, starting at 1.
func NextScriptNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to scan service directory: %w", err)
	}

	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		scriptFile, err := applier.ParseScriptFileName(entry.Name())
		if err != nil {
			// Skip files that don't match the naming convention
			continue
		}
		if scriptFile.Number > highest {
			highest = scriptFile.Number
		}
	}

	return highest + 1, nil
}
