package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/craftledger/internal/notify"
)

func TestAlertRecorder(t *testing.T) {
	var r AlertRecorder

	assert.True(t, r.Dispatch(notify.Alert{Item: "Wood"}))
	assert.True(t, r.Dispatch(notify.Alert{Item: "Nails"}))

	got := r.Alerts()
	assert.Len(t, got, 2)
	assert.Equal(t, "Wood", got[0].Item)

	got[0].Item = "mutated"
	assert.Equal(t, "Wood", r.Alerts()[0].Item, "Alerts returns a copy")

	r.Reset()
	assert.Empty(t, r.Alerts())
}
