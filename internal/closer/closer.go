// Package closer collects cleanup functions that run when the command exits.
package closer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

type namedCloser struct {
	name string
	f    func(context.Context) error
}

// Closer runs registered cleanup functions concurrently.
type Closer struct {
	locker  sync.Mutex
	closers []namedCloser
}

// Add registers f under name, which is used to annotate its error.
func (c *Closer) Add(name string, f func(context.Context) error) {
	c.locker.Lock()
	defer c.locker.Unlock()
	c.closers = append(c.closers, namedCloser{name: name, f: f})
}

// Close runs every registered function and forgets them.
// It returns the first error encountered.
func (c *Closer) Close(ctx context.Context) error {
	c.locker.Lock()
	closers := c.closers
	c.closers = nil
	c.locker.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, closer := range closers {
		closer := closer
		eg.Go(func() error {
			if err := closer.f(ctx); err != nil {
				return fmt.Errorf("close %s: %w", closer.name, err)
			}
			return nil
		})
	}

	return eg.Wait()
}
