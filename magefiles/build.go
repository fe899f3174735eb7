//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Demo builds the cmd/demo binary.
func (Build) Demo() error {
	fmt.Println("Build demo...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/demo", "./cmd/demo"), withStream())
	return err
}

// Vet runs go vet across the module.
func (Build) Vet() error {
	fmt.Println("Vet rgpu...")
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
