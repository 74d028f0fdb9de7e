package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/alnah/go-tsumego-pdf/internal/config"
	"github.com/alnah/go-tsumego-pdf/internal/diagram"
	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Catalog  catalogInfo `json:"catalog"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// catalogInfo describes where problems come from.
type catalogInfo struct {
	Source      string `json:"source"` // "sqlite" or "yaml"
	Path        string `json:"path"`
	Found       bool   `json:"found"`
	Collections int    `json:"collections"`
	Problems    int    `json:"problems"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	Workers      int    `json:"workers"`
	TempWritable bool   `json:"temp_writable"`
	FontLoaded   bool   `json:"font_loaded"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	jsonOutput := false
	configName := ""
	for i, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-c", "--config":
			if i+1 < len(args) {
				configName = args[i+1]
			}
		}
	}

	cfg, err := loadConfig(configName, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	result := runDoctor(ctx, cfg)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Workers: render.ResolvePoolSize(cfg.Render.Workers),
		},
	}

	checkCatalog(ctx, cfg, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkCatalog opens the configured puzzle source and counts its content.
func checkCatalog(ctx context.Context, cfg *config.Config, result *doctorResult) {
	info := &result.Catalog
	if cfg.Catalog.Collections != "" {
		info.Source, info.Path = "yaml", cfg.Catalog.Collections
	} else {
		info.Source, info.Path = "sqlite", cfg.Catalog.Path
		if !fileutil.FileExists(info.Path) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Catalog not found at %s. Run 'tsumego-pdf import <dir>'", info.Path))
			return
		}
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open %s: %v", info.Path, err))
		return
	}
	defer st.Close()
	info.Found = true

	cols, err := st.Collections(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot list collections: %v", err))
		return
	}
	info.Collections = len(cols)
	for _, c := range cols {
		info.Problems += c.Problems
	}
	if len(cols) == 0 {
		result.Warnings = append(result.Warnings, "No collections found. Import some with 'tsumego-pdf import'")
	}
}

// checkSystem verifies the temp directory and the diagram font.
func checkSystem(result *doctorResult) {
	tmp, err := os.MkdirTemp("", "tsumego-pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	} else {
		_ = os.RemoveAll(tmp)
		result.System.TempWritable = true
	}

	r, err := diagram.NewRenderer(diagram.DefaultStyle())
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot load diagram font: %v", err))
		return
	}
	_ = r.Close()
	result.System.FontLoaded = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "tsumego-pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Catalog")
	if r.Catalog.Found {
		fmt.Fprintf(w, "  [OK] %s: %s\n", r.Catalog.Source, r.Catalog.Path)
		fmt.Fprintf(w, "  [OK] %d collections, %d problems\n", r.Catalog.Collections, r.Catalog.Problems)
	} else {
		fmt.Fprintf(w, "  [ERROR] Not available: %s\n", r.Catalog.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] Render workers: %d per document\n", r.System.Workers)
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.FontLoaded {
		fmt.Fprintln(w, "  [OK] Diagram font: loaded")
	} else {
		fmt.Fprintln(w, "  [ERROR] Diagram font: failed")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
