package main

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil))
	assert.Equal(t, "▁▁▁", sparkline([]float64{5, 5, 5}))
	assert.Equal(t, "▁█▁", sparkline([]float64{100, 104, 100}))
	assert.Equal(t, "▁▄█", sparkline([]float64{0, 5, 10}))
}

func TestTUIViewCreation(t *testing.T) {
	ui := NewTUIView(tview.NewApplication(), "pulsecam")

	assert.NotNil(t, ui.GetLayout())
	assert.Equal(t, "-- BPM", ui.bpm.GetText(true))
}
