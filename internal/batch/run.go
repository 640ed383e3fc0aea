package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll processes batch directories with at most concurrency batches in flight.
// Results keep the order of dirs. A batch that fails carries its error in
// Result.Err; only cancellation of ctx stops the run.
func (p *Processor) RunAll(ctx context.Context, dirs []string, concurrency int) ([]*Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*Result, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.logger.Info("Starting batch", "batch", ID(dir), "progress", i+1, "total", len(dirs))

			res, err := p.Process(ctx, dir)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Error("Batch failed", "batch", ID(dir), "err", err)
				res = &Result{BatchID: ID(dir), Path: dir, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
