package main

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/stake-console/internal/stakecore"
)

var levelNames = map[stakecore.Level]string{
	stakecore.LevelInfo:    "info",
	stakecore.LevelPending: "pending",
	stakecore.LevelSuccess: "success",
	stakecore.LevelError:   "error",
}

// guiDisplay routes core updates to the window widgets.
type guiDisplay struct {
	mu       sync.Mutex
	labels   map[stakecore.Field]*widget.Label
	links    map[stakecore.Field]*widget.Hyperlink
	status   *widget.Label
	actions  []*widget.Button
	withdraw *widget.Button

	busy        bool
	canWithdraw bool
	lastTx      string
}

func newGUIDisplay(status *widget.Label) *guiDisplay {
	return &guiDisplay{
		labels: map[stakecore.Field]*widget.Label{},
		links:  map[stakecore.Field]*widget.Hyperlink{},
		status: status,
	}
}

// label creates the value label for f.
func (d *guiDisplay) label(f stakecore.Field) *widget.Label {
	l := widget.NewLabel("-")
	d.labels[f] = l
	return l
}

func (d *guiDisplay) link(f stakecore.Field, text string) *widget.Hyperlink {
	h := widget.NewHyperlink(text, nil)
	h.Hide()
	d.links[f] = h
	return h
}

func (d *guiDisplay) Set(f stakecore.Field, v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f == stakecore.FieldLastTx {
		d.lastTx = v
	}
	if h, ok := d.links[f]; ok {
		if err := h.SetURLFromString(v); err == nil {
			h.Show()
		}
		return
	}
	if l, ok := d.labels[f]; ok {
		if f == stakecore.FieldMatured {
			v = maturedText(v)
		}
		l.SetText(v)
	}
}

func maturedText(v string) string {
	switch v {
	case "YES":
		return "✅ YES"
	case "NO":
		return "⏳ NO"
	}
	return v
}

func (d *guiDisplay) SetWithdrawEnabled(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.canWithdraw = b
	d.syncButtons()
}

func (d *guiDisplay) SetBusy(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = b
	d.syncButtons()
}

func (d *guiDisplay) syncButtons() {
	for _, b := range d.actions {
		if d.busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
	if d.withdraw != nil {
		if d.busy || !d.canWithdraw {
			d.withdraw.Disable()
		} else {
			d.withdraw.Enable()
		}
	}
}

func (d *guiDisplay) SetStatus(level stakecore.Level, text string) {
	d.mu.Lock()
	tx := d.lastTx
	d.mu.Unlock()
	if level != stakecore.LevelPending {
		tx = ""
	}
	telAdd(TelemetryItem{Level: levelNames[level], Status: text, Tx: tx})
	_, _ = logSink{}.Write([]byte(strings.ToUpper(levelNames[level]) + " " + text + "\n"))

	switch level {
	case stakecore.LevelError:
		d.status.Importance = widget.DangerImportance
	case stakecore.LevelSuccess:
		d.status.Importance = widget.SuccessImportance
	case stakecore.LevelPending:
		d.status.Importance = widget.WarningImportance
	default:
		d.status.Importance = widget.MediumImportance
	}
	d.status.SetText(text)
}
