//go:build rpldebug

package rpl_test

import (
	"testing"

	"github.com/bettergram/rpl"
	"github.com/bettergram/rpl/rpltest"
	"github.com/stretchr/testify/require"
)

func TestConsumer_afterTerminal_panicsInDebug(t *testing.T) {
	t.Parallel()

	r := rpltest.NewRecorder[int, string]()
	c := r.Consumer()

	require.True(t, c.PutError("first"))

	require.PanicsWithValue(t, rpl.ContractViolationError{Signal: "PutNext"}, func() {
		c.PutNext(1)
	})
	require.PanicsWithValue(t, rpl.ContractViolationError{Signal: "PutError"}, func() {
		c.PutError("second")
	})
	require.PanicsWithValue(t, rpl.ContractViolationError{Signal: "PutDone"}, func() {
		c.PutDone()
	})

	// The consumer state is unchanged by the violations.
	r.RequireSignals(t, rpltest.Error[int]("first"))
}
