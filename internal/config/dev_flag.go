//go:build dev

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/felixge/fgprof"
	"github.com/mazrean/qjson/internal/metrics"
)

type DevFlag struct {
	CPUProf         string        `kong:"optional,help='CPU profile output file',type='path'"`
	CPUProfFile     *os.File      `kong:"-"`
	MemProf         string        `kong:"optional,help='Memory profile output file',type='path'"`
	Metrics         string        `kong:"optional,help='Metrics output file',type='path'"`
	MetricsInterval time.Duration `kong:"default='100ms',help='Interval of process stat sampling'"`
	FgProf          string        `kong:"optional,help='fgprof output file',type='path'"`
	FgProfFile      *os.File      `kong:"-"`
	fgprofStop      func() error  `kong:"-"`
}

func (d *DevFlag) StartProfiling(ctx context.Context) error {
	if d.CPUProf != "" {
		f, err := os.Create(d.CPUProf)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		d.CPUProfFile = f

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profiling: %w", err)
		}
	}

	if d.FgProf != "" {
		f, err := os.Create(d.FgProf)
		if err != nil {
			return fmt.Errorf("failed to create fgprof file: %w", err)
		}
		d.FgProfFile = f

		d.fgprofStop = fgprof.Start(f, fgprof.FormatPprof)
	}

	if d.Metrics != "" {
		metrics.Enable()
		if err := metrics.InitProcStat(ctx, d.MetricsInterval); err != nil {
			return fmt.Errorf("failed to initialize proc stat: %w", err)
		}
	}

	return nil
}

func (d *DevFlag) StopProfiling() error {
	var errs []error

	if d.CPUProfFile != nil {
		pprof.StopCPUProfile()
		if err := d.CPUProfFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close CPU profile: %w", err))
		}
	}

	if d.fgprofStop != nil {
		if err := d.fgprofStop(); err != nil {
			errs = append(errs, fmt.Errorf("stop fgprof: %w", err))
		}
	}
	if d.FgProfFile != nil {
		if err := d.FgProfFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fgprof file: %w", err))
		}
	}

	if d.MemProf != "" {
		if err := writeFile(d.MemProf, func(f *os.File) error {
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		}); err != nil {
			errs = append(errs, fmt.Errorf("write memory profile: %w", err))
		}
	}

	if d.Metrics != "" {
		if err := writeFile(d.Metrics, func(f *os.File) error {
			return metrics.WriteMetrics(f)
		}); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return write(f)
}
