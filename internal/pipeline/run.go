package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/internal/ports"
	"github.com/docship/docship/pkg/log"
)

// run drives one producer and a pool of sender workers over a bounded
// channel, and returns the first fatal error of either side.
func (imp *Importer) run(ctx context.Context, chunker ports.Chunker, target ports.Target) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan domain.Batch, imp.cfg.QueueSize)

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	// The chunker itself is never parallelized: one producer keeps batch
	// indices monotonic and gapless, which the skip-batches resume contract
	// depends on.
	var producerWG sync.WaitGroup
	producerWG.Add(1)
	go func() {
		defer producerWG.Done()
		defer close(batches)
		var index uint64
		for {
			payload, docs, err := chunker.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					fail(err)
				}
				return
			}
			b := domain.Batch{Index: index, Data: payload, Docs: docs}
			index++
			select {
			case batches <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	pool, err := ants.NewPool(imp.cfg.Jobs)
	if err != nil {
		fail(fmt.Errorf("create worker pool: %w", err))
		producerWG.Wait()
		return firstErr
	}
	defer pool.Release()

	var workerWG sync.WaitGroup
	for n := 0; n < imp.cfg.Jobs; n++ {
		workerWG.Add(1)
		submitErr := pool.Submit(func() {
			defer workerWG.Done()
			for b := range batches {
				// Stop pulling past the failing point.
				if ctx.Err() != nil {
					return
				}
				if err := imp.deliver(ctx, b, target); err != nil {
					fail(err)
					return
				}
			}
		})
		if submitErr != nil {
			workerWG.Done()
			fail(fmt.Errorf("submit worker: %w", submitErr))
		}
	}

	workerWG.Wait()
	producerWG.Wait()
	return firstErr
}

// deliver sends one batch, honoring the skip offset and the retry budget.
// Exhausting the budget is fatal for the whole run.
func (imp *Importer) deliver(ctx context.Context, b domain.Batch, target ports.Target) error {
	if b.Index < imp.cfg.SkipBatches {
		// Applied by a previous run; account for it without touching the
		// network.
		imp.progress.Add(1)
		return nil
	}

	back := newBackoff(imp.cfg.RetryMinWait, imp.cfg.RetryMaxWait)
	var lastErr error
	for attempt := 1; attempt <= imp.cfg.MaxAttempts; attempt++ {
		err := imp.sender.Send(ctx, b, target)
		if err == nil {
			imp.progress.Add(1)
			return nil
		}
		lastErr = err

		imp.logger.Warn("send failed",
			log.Uint64("batch", b.Index),
			log.Int("attempt", attempt),
			log.Err(err),
		)
		imp.progress.Println(fmt.Sprintf("batch %d attempt %d/%d: %v", b.Index, attempt, imp.cfg.MaxAttempts, err))

		if attempt == imp.cfg.MaxAttempts {
			break
		}
		if err := back.Sleep(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf("batch %d: %w: %v", b.Index, domain.ErrAttemptsExhausted, lastErr)
}
