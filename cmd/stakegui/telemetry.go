package main

import (
	"sync"
	"time"
)

// TelemetryItem is one status line shown to the operator.
type TelemetryItem struct {
	Time   string `json:"time"`
	Level  string `json:"level"`
	Status string `json:"status"`
	Tx     string `json:"tx,omitempty"`
}

var (
	telemetry []TelemetryItem
	telMu     sync.Mutex
)

func telAdd(it TelemetryItem) {
	if it.Time == "" {
		it.Time = time.Now().UTC().Format(time.RFC3339)
	}
	telMu.Lock()
	telemetry = append(telemetry, it)
	telMu.Unlock()
}

func telSnapshot() []TelemetryItem {
	telMu.Lock()
	defer telMu.Unlock()
	return append([]TelemetryItem(nil), telemetry...)
}
