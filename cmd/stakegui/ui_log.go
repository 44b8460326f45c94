package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const maxLogBytes = 256 << 10

var (
	logMu     sync.Mutex
	logText   strings.Builder
	logWin    fyne.Window
	logBox    *widget.Entry
	logScroll *container.Scroll
)

// logSink receives the zerolog output and mirrors it into the log window.
type logSink struct{}

func (logSink) Write(p []byte) (int, error) {
	logMu.Lock()
	defer logMu.Unlock()
	if logText.Len()+len(p) > maxLogBytes {
		keep := logText.String()
		keep = keep[len(keep)/2:]
		logText.Reset()
		logText.WriteString(keep)
	}
	logText.Write(p)
	if logBox != nil {
		logBox.SetText(logText.String())
		logScroll.ScrollToBottom()
	}
	return len(p), nil
}

// ensureLogWindow creates or returns the log window.
func ensureLogWindow(a fyne.App) fyne.Window {
	logMu.Lock()
	defer logMu.Unlock()
	if logWin != nil {
		return logWin
	}
	logWin = a.NewWindow("Logs")
	logWin.SetOnClosed(func() {
		logMu.Lock()
		logWin, logBox, logScroll = nil, nil, nil
		logMu.Unlock()
	})
	exportBtn := widget.NewButtonWithIcon("Export Telemetry JSON", theme.DocumentSaveIcon(), func() {
		saveTelemetryJSON()
	})
	top := container.NewBorder(nil, nil, nil, exportBtn, widget.NewLabel("Status history and debug log"))
	bg := canvas.NewLinearGradient(color.NRGBA{12, 16, 24, 255}, color.NRGBA{20, 28, 40, 255}, 90)
	logBox = widget.NewMultiLineEntry()
	logBox.Disable()
	logBox.Wrapping = fyne.TextWrapWord
	logBox.SetText(logText.String())
	logScroll = container.NewVScroll(logBox)
	logScroll.SetMinSize(fyne.NewSize(800, 180))
	logWin.SetContent(container.NewBorder(top, nil, nil, nil, container.NewStack(bg, logScroll)))
	logWin.Resize(fyne.NewSize(1000, 600))
	logScroll.ScrollToBottom()
	return logWin
}

// saveTelemetryJSON writes the status history to a timestamped JSON file
// next to the executable.
func saveTelemetryJSON() {
	path, err := writeTelemetry(telemetryDir(), time.Now())
	if err != nil {
		fyne.CurrentApp().SendNotification(&fyne.Notification{Title: "Save error", Content: fmt.Sprintf("%v", err)})
		return
	}
	fyne.CurrentApp().SendNotification(&fyne.Notification{Title: "Saved", Content: path})
}

func telemetryDir() string {
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "log_data")
}

func writeTelemetry(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, now.Format("20060102_150405")+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err = enc.Encode(map[string]any{
		"generatedAt": now.UTC().Format(time.RFC3339),
		"telemetry":   telSnapshot(),
	})
	return path, err
}
