package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/procfs"
)

var (
	cpuSelfGauge = NewGauge("cpu_self")
	memSelfGauge = NewGauge("mem_self")
	ioSelfGauge  = NewGauge("io_self")
)

// InitProcStat samples CPU time, memory and I/O counters of the current
// process every interval until ctx is done.
func InitProcStat(ctx context.Context, interval time.Duration) error {
	proc, err := procfs.Self()
	if err != nil {
		return fmt.Errorf("open self proc: %w", err)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if err := sampleSelf(proc); err != nil {
				log.Printf("failed to get stat: %v", err)
			}
		}
	}()

	return nil
}

func sampleSelf(proc procfs.Proc) error {
	stat, err := proc.Stat()
	if err != nil {
		return fmt.Errorf("get stat: %w", err)
	}

	cpuSelfGauge.Set(float64(stat.UTime), "user")
	cpuSelfGauge.Set(float64(stat.STime), "system")
	cpuSelfGauge.Set(stat.CPUTime(), "total_seconds")
	memSelfGauge.Set(float64(stat.ResidentMemory()), "rss")
	memSelfGauge.Set(float64(stat.VirtualMemory()), "vsize")

	procIO, err := proc.IO()
	if err != nil {
		return fmt.Errorf("get io: %w", err)
	}

	ioSelfGauge.Set(float64(procIO.RChar), "read")
	ioSelfGauge.Set(float64(procIO.WChar), "write")

	return nil
}
