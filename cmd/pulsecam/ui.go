package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pulsecam/internal/session"
)

// controls is the part of the controller the UI drives.
type controls interface {
	Restart(ctx context.Context) error
	Stop()
}

// TUIView renders a measurement in the terminal. It is the controller's
// display and visualizer.
type TUIView struct {
	app *tview.Application

	layout *tview.Flex
	header *tview.TextView
	bpm    *tview.TextView
	timer  *tview.TextView
	status *tview.TextView
	graph  *tview.TextView
	help   *tview.TextView
}

// NewTUIView creates the layout.
func NewTUIView(app *tview.Application, title string) *TUIView {
	ui := &TUIView{app: app}

	ui.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(fmt.Sprintf("[::b]%s", title))

	ui.bpm = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[red::b]-- BPM")
	ui.bpm.SetBorder(true).SetTitle("Heart rate")

	ui.timer = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	ui.status = tview.NewTextView().SetTextAlign(tview.AlignCenter)

	ui.graph = tview.NewTextView().SetDynamicColors(true)
	ui.graph.SetBorder(true).SetTitle("Brightness")

	ui.help = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]r[white] restart   [yellow]q[white] quit")

	ui.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(ui.bpm, 3, 0, false).
		AddItem(ui.timer, 1, 0, false).
		AddItem(ui.status, 1, 0, false).
		AddItem(ui.graph, 0, 1, false).
		AddItem(ui.help, 1, 0, false)

	return ui
}

// GetLayout returns the root primitive.
func (ui *TUIView) GetLayout() tview.Primitive {
	return ui.layout
}

// BindKeys wires r to restart and q to quit.
//
// Restart and Stop wait for an in-flight tick, which may itself be queueing
// a draw, so both run off the event goroutine.
func (ui *TUIView) BindKeys(ctx context.Context, ctrl controls, onErr func(error)) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlC, event.Rune() == 'q':
			go func() {
				ctrl.Stop()
				ui.app.Stop()
			}()
			return nil
		case event.Rune() == 'r':
			go func() {
				if err := ctrl.Restart(ctx); err != nil {
					onErr(err)
				}
			}()
			return nil
		}
		return event
	})
}

// Status implements session.Display.
func (ui *TUIView) Status(status string) {
	ui.app.QueueUpdateDraw(func() {
		ui.status.SetText(status)
		if status == session.StatusStarting {
			ui.bpm.SetText("[red::b]-- BPM")
		}
	})
}

// Tick implements session.Display.
func (ui *TUIView) Tick(r session.TickResult) {
	ui.app.QueueUpdateDraw(func() {
		ui.timer.SetText(r.Timer)
		ui.status.SetText(r.Status)
		if r.Complete {
			ui.bpm.SetText(fmt.Sprintf("[red::b]%s BPM", r.BPMText))
		}
	})
}

// Render implements session.Visualizer.
func (ui *TUIView) Render(trace []float64) {
	line := "[green]" + sparkline(trace)
	ui.app.QueueUpdateDraw(func() {
		ui.graph.SetText(line)
	})
}

var levels = []rune("▁▂▃▄▅▆▇█")

// sparkline scales the trace between its own minimum and maximum; a camera
// pulse moves brightness by a few units out of 255.
func sparkline(trace []float64) string {
	if len(trace) == 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range trace {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range trace {
		i := 0
		if hi > lo {
			i = int((v - lo) / (hi - lo) * float64(len(levels)-1))
		}
		b.WriteRune(levels[i])
	}
	return b.String()
}
