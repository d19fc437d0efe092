//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "anki-flashcard-builder"

var Default = Build

// Build compiles the anki-flashcard-builder binary.
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/anki-flashcard-builder")
}

// Install builds the binary and puts it into GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "./cmd/anki-flashcard-builder")
}

// Test runs the test suite with the race detector on.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet followed by the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes the built binary.
func Clean() error {
	fmt.Println("removing", binary)
	return sh.Rm(binary)
}
