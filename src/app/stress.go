package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/daniilvolkov/pagecache/src"
	"github.com/daniilvolkov/pagecache/src/bufferpool"
	"github.com/daniilvolkov/pagecache/src/pkg/common"
	"github.com/daniilvolkov/pagecache/src/pkg/metrics"
	"github.com/daniilvolkov/pagecache/src/pkg/utils"
	"github.com/daniilvolkov/pagecache/src/storage/disk"
	"github.com/daniilvolkov/pagecache/src/storage/page"
)

const stressFileID = common.FileID(1)

// StressEntrypoint hammers a buffer pool with concurrent pin/unpin/evict
// traffic. It exists to shake out replacer races: any invariant violation
// surfaces as a failed run.
type StressEntrypoint struct {
	ConfigPath string

	Env envVars
	Log src.Logger

	runID    uuid.UUID
	replacer *bufferpool.LRUReplacer
	pool     *bufferpool.Manager[*page.Page]
}

func (e *StressEntrypoint) Init(_ context.Context) error {
	e.Env = mustLoadEnv(e.ConfigPath)

	if e.Env.Environment == EnvDev {
		e.Log = utils.Must(zap.NewDevelopment()).Sugar()
	} else {
		e.Log = utils.Must(zap.NewProduction()).Sugar()
	}

	e.runID = uuid.New()

	var fs afero.Fs
	if e.Env.DataDir == "" {
		fs = afero.NewMemMapFs()
	} else {
		fs = afero.NewBasePathFs(afero.NewOsFs(), e.Env.DataDir)
	}

	stats, err := metrics.NewPoolMetrics()
	if err != nil {
		return errors.Wrap(err, "init pool metrics")
	}

	e.replacer = bufferpool.NewLRUReplacer(e.Env.PoolSize)
	e.pool = bufferpool.New[*page.Page](
		e.Env.PoolSize,
		e.replacer,
		disk.New("/stress", fs),
		e.Log,
		stats,
	)

	return nil
}

func (e *StressEntrypoint) Run(ctx context.Context) error {
	e.Log.Infow(
		"starting stress run",
		"run_id", e.runID.String(),
		"workers", e.Env.Workers,
		"pool_size", e.Env.PoolSize,
		"page_universe", e.Env.PageUniverse,
		"ops_per_worker", e.Env.OpsPerWorker,
	)

	workers, err := ants.NewPool(e.Env.Workers)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer func() { _ = workers.Release() }()

	var wg sync.WaitGroup
	errsCh := make(chan error, e.Env.Workers)

	for w := 0; w < e.Env.Workers; w++ {
		w := w
		wg.Add(1)

		submitErr := workers.Submit(func() {
			defer wg.Done()

			if err := e.worker(ctx, w); err != nil {
				errsCh <- err
			}
		})
		if submitErr != nil {
			wg.Done()

			return errors.Wrap(submitErr, "submit worker")
		}
	}

	wg.Wait()
	close(errsCh)

	for err := range errsCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "stress worker")
		}
	}

	e.Log.Infow(
		"stress run finished",
		"run_id", e.runID.String(),
		"evictable_frames", e.replacer.GetSize(),
	)

	return nil
}

func (e *StressEntrypoint) worker(ctx context.Context, workerID int) error {
	rng := rand.New(rand.NewSource(int64(workerID) + 1))

	for op := 0; op < e.Env.OpsPerWorker; op++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pageIdent := common.PageIdentity{
			FileID: stressFileID,
			PageID: common.PageID(rng.Intn(int(e.Env.PageUniverse))),
		}

		p, err := e.pool.GetPage(pageIdent)
		if err != nil {
			// workers never outnumber frames, so a missing victim means
			// the replacer lost track of an unpinned frame
			return errors.Wrapf(err, "worker %d get page %v", workerID, pageIdent)
		}

		if size := e.replacer.GetSize(); size > e.Env.PoolSize {
			return errors.Errorf(
				"evictable set outgrew the pool: %d > %d",
				size,
				e.Env.PoolSize,
			)
		}

		if rng.Intn(4) == 0 {
			p.Lock()
			p.SetData(fmt.Appendf(nil, "run %s worker %d op %d", e.runID, workerID, op))
			p.SetDirtiness(true)
			p.Unlock()
		}

		if err := e.pool.Unpin(pageIdent); err != nil {
			return errors.Wrapf(err, "worker %d unpin page %v", workerID, pageIdent)
		}
	}

	return nil
}

func (e *StressEntrypoint) Close() error {
	if e.pool != nil {
		if err := e.pool.FlushAllPages(); err != nil {
			return errors.Wrap(err, "flush pool")
		}
	}

	if e.Log != nil {
		_ = e.Log.Sync()
	}

	return nil
}
