package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/zstd"
	"github.com/mazrean/qjson/internal/closer"
	"github.com/mazrean/qjson/internal/config"
	mylog "github.com/mazrean/qjson/internal/pkg/log"
	"github.com/mazrean/qjson/internal/transcode"
	"github.com/mazrean/qjson/log"
)

var (
	version  = "dev"
	revision = "none"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	// Initialize default logger with info level
	logger := log.DefaultLogger

	cfg, err := config.Load(config.Version{Version: version, Revision: revision}, os.Args[1:], config.Paths(logger))
	if err != nil {
		logger.Errorf("%v", err)
		return 2
	}

	level, err := mylog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("%v. ignore and use default info level instead", err)
	} else {
		logger = mylog.NewLogger(level)
	}

	logger.Debugf("configuration: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, os.Stdout, os.Stdin); err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	return 0
}

// run transcodes the configured input into w. in is used when the input file is "-".
func run(ctx context.Context, logger log.Logger, cfg *config.Config, w io.Writer, in io.Reader) (err error) {
	var c closer.Closer
	defer func() {
		if closeErr := c.Close(context.Background()); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if err := cfg.Dev.StartProfiling(ctx); err != nil {
		logger.Warnf("failed to start profiling: %v", err)
	}
	c.Add("profiling", func(context.Context) error {
		return cfg.Dev.StopProfiling()
	})

	r, err := openInput(cfg, in, &c)
	if err != nil {
		return err
	}

	t := transcode.New(
		transcode.WithLogger(logger),
		transcode.WithIndent(cfg.Indent),
		transcode.WithFloatDigits(cfg.FloatDigits),
		transcode.WithMaxDepth(cfg.MaxDepth),
		transcode.WithBufferSize(cfg.BufferSize),
		transcode.WithFormat(transcode.Format(cfg.Format)),
		transcode.WithLines(cfg.Lines),
		transcode.WithWorkers(cfg.Workers),
	)

	return t.Run(ctx, w, r)
}

func openInput(cfg *config.Config, in io.Reader, c *closer.Closer) (io.Reader, error) {
	r := in
	if cfg.File != "-" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		c.Add("input", func(context.Context) error {
			return f.Close()
		})
		r = f
	}

	if cfg.Zstd {
		zr := zstd.NewReader(r)
		c.Add("zstd reader", func(context.Context) error {
			return zr.Close()
		})
		r = zr
	}

	return r, nil
}
