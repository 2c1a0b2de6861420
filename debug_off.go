//go:build !rpldebug

package rpl

// checkContracts reports whether consumer contract violations panic.
// Build with -tags rpldebug to enable the checks.
const checkContracts = false
