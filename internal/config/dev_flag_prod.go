//go:build !dev

package config

import "context"

// DevFlag carries no flags outside dev builds
type DevFlag struct{}

func (d *DevFlag) StartProfiling(context.Context) error { return nil }

func (d *DevFlag) StopProfiling() error { return nil }
