//go:build tools

// Package tools tracks the code generators run by go generate, so mockgen
// resolves from go.mod on a fresh checkout.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
