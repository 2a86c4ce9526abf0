//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "signspeak"

// Default target when running plain `mage`
var Default = Build

// Build compiles the signspeak binary into the repository root
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/signspeak")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/signspeak")
}

// Clean removes the built binary
func Clean() error {
	return os.RemoveAll(binary)
}
