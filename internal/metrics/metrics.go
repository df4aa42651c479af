// Package metrics records timestamped gauge values and dumps them as CSV.
package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	enabled      atomic.Bool
	startTime    = time.Now()
	gaugesLocker = &sync.RWMutex{}
	gauges       = []*Gauge{}
)

// Enable starts recording. Gauges drop values until it is called.
func Enable() {
	enabled.Store(true)
}

// NewGauge creates a gauge and registers it for WriteMetrics.
func NewGauge(name string) *Gauge {
	gauge := &Gauge{
		name: name,
	}

	gaugesLocker.Lock()
	defer gaugesLocker.Unlock()

	gauges = append(gauges, gauge)

	return gauge
}

// WriteMetrics writes every record of every registered gauge to w.
// Times are nanoseconds since process start.
func WriteMetrics(w io.Writer) error {
	csvWriter := csv.NewWriter(w)

	err := csvWriter.Write([]string{"name", "label", "value", "time"})
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	gaugesLocker.RLock()
	defer gaugesLocker.RUnlock()

	for _, gauge := range gauges {
		for _, record := range gauge.getRecords() {
			err := csvWriter.Write([]string{
				gauge.name,
				record.label,
				strconv.FormatFloat(record.value, 'f', -1, 64),
				strconv.FormatInt(record.time.Sub(startTime).Nanoseconds(), 10),
			})
			if err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

type record struct {
	value float64
	time  time.Time
	label string
}

type Gauge struct {
	name          string
	recordsLocker sync.RWMutex
	records       []record
}

func (g *Gauge) Set(value float64, label string) {
	if !enabled.Load() {
		return
	}

	g.recordsLocker.Lock()
	defer g.recordsLocker.Unlock()

	g.records = append(g.records, record{
		value: value,
		time:  time.Now(),
		label: label,
	})
}

func (g *Gauge) getRecords() []record {
	g.recordsLocker.RLock()
	defer g.recordsLocker.RUnlock()

	return append([]record(nil), g.records...)
}

// Stopwatch runs f and records its duration in nanoseconds.
func (g *Gauge) Stopwatch(f func(), label string) {
	if !enabled.Load() {
		f()
		return
	}

	start := time.Now()
	f()
	g.Set(float64(time.Since(start).Nanoseconds()), label)
}
