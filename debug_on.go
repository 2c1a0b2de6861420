//go:build rpldebug

package rpl

const checkContracts = true
