//go:build mage

// Package main contains Mage build targets for thesis-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "thesis-engine"
	cmdPkg  = "./cmd/thesis-engine"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	".secrets",
	"references",
	"output",
}

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `# thesis-engine configuration. Environment variables override keys as
# THESIS_ENGINE_<SECTION>_<KEY>, e.g. THESIS_ENGINE_AI_MODEL.
search:
  max_retries: 2
ai:
  provider: openai
  model: gemini-2.5-flash
session:
  backend: sqlite
  path: thesis-engine.db
server:
  addr: ":8080"
log:
  level: info
  format: text
`

// Init creates the working directories, .secrets/, and a sample config.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat("thesis-engine.yaml"); os.IsNotExist(err) {
		if err := os.WriteFile("thesis-engine.yaml", []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing sample config: %w", err)
		}
		fmt.Println("   thesis-engine.yaml")
	}
	fmt.Println("Project initialized. Put API keys in .secrets/gemini-api-key (and -2, -3, ... for rotation).")
	return nil
}

// Build compiles the CLI binary into bin/ with the version stamped in.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + buildVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// buildVersion is the git describe output, or "dev" outside a checkout.
func buildVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Serve builds the binary and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production and test line counts.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines walks the tree and counts non-blank lines in Go files,
// skipping underscore-prefixed directories. If testOnly is true, count only
// _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), "_") || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}
