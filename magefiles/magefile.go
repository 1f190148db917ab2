//go:build mage

// Package main provides build targets for the contracts module using Mage.
//
// Usage:
//
//	mage test     Run all tests with the race detector
//	mage vet      Run go vet
//	mage build    Compile contractdoc to bin/
//	mage docs     Render the library's own documentation to docs/CONTRACTS.md
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "contractdoc"
	binaryDir  = "bin"
	cmdDir     = "./cmd/contractdoc"
	docsFile   = "docs/CONTRACTS.md"
)

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Build compiles the contractdoc binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Docs renders the documentation of the contracts package as Markdown.
func Docs() error {
	mg.Deps(Build)
	out, err := sh.Output(filepath.Join(binaryDir, binaryName), "render", "--format", "markdown", "--title", "Contract reference")
	if err != nil {
		return err
	}
	return os.WriteFile(docsFile, []byte(out+"\n"), 0o644)
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
