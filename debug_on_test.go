//go:build rpldebug

package rpl_test

const rplDebug = true
