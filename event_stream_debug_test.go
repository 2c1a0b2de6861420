//go:build rpldebug

package rpl_test

import (
	"testing"

	"github.com/bettergram/rpl"
	"github.com/bettergram/rpl/rpltest"
	"github.com/stretchr/testify/require"
)

func TestEventStream_fireRacingCloseIsNotAViolation(t *testing.T) {
	t.Parallel()

	s := rpl.NewEventStream[int, string]()

	first := rpltest.NewRecorder[int, string]()
	var owner rpl.Lifetime
	defer owner.End()
	s.Events().StartWithNext(func(int) {
		s.FireError("closed by subscriber")
	}, &owner)
	owner.Hold(first.Start(s.Events()))

	require.NotPanics(t, func() { s.Fire(1) })
	first.RequireSignals(t, rpltest.Error[int]("closed by subscriber"))
}
