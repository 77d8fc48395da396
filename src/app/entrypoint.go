package app

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

type Entrypoint interface {
	io.Closer
	Init(ctx context.Context) error
	Run(ctx context.Context) error
}

// Run drives an entrypoint through its lifecycle. SIGINT/SIGTERM cancel the
// context; Close runs exactly once, after Run returns or on shutdown,
// whichever comes first.
func Run(ctx context.Context, e Entrypoint) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := e.Init(ctx); err != nil {
		return errors.Wrap(err, "entrypoint init")
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer cancel()

		return e.Run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		return e.Close()
	})

	return eg.Wait()
}
