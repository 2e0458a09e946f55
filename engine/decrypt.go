package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/forge"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/plaintext"
)

// Decryptor recovers plaintext from a ciphertext by solving every target
// block in parallel (spec §4.7). Each block's decryption is independent of
// every other block's, since CBC decryption only ever consults a block's
// immediate predecessor.
type Decryptor struct {
	Oracle  oracle.Oracle
	Cache   *cache.Cache
	Options Options
	Sink    events.Sink
}

// NewDecryptor builds a Decryptor with sane defaults for Options and a
// no-op Sink; callers typically override both.
func NewDecryptor(o oracle.Oracle, c *cache.Cache) *Decryptor {
	return &Decryptor{Oracle: o, Cache: c, Options: DefaultOptions(), Sink: events.NopSink{}}
}

// Decrypt solves every target block of ct in parallel and returns the
// recovered plaintext, still including its PKCS#7 padding. Block index 0
// (the IV) is never a target.
//
// A block that never converges (retries exhausted, an unreachable oracle)
// aborts only that block; every other block's solution is still returned.
// The error, when non-nil, names which blocks failed — callers that only
// care about full success can treat any error as fatal, but the returned
// PlainText always carries whatever was actually recovered, with unsolved
// blocks left as the Go zero value block.Block{} (size 0, no bytes).
func (d *Decryptor) Decrypt(ctx context.Context, ct ctext.Ciphertext) (plaintext.PlainText, error) {
	solved, err := d.solveAll(ctx, ct.Blocks, 1, len(ct.Blocks))

	blocks := make([]block.Block, len(solved))
	for i, s := range solved {
		if s == nil {
			continue
		}
		blocks[i] = s.PlainTextSolution()
	}
	return plaintext.PlainText{Blocks: blocks}, err
}

// solveAll runs solveBlock for every target index in [from, to) against the
// shared prefix, in parallel, and returns the results ordered by index. Every
// call shares ctx itself rather than a derived errgroup context, so one
// block exhausting its retries never cancels its siblings' in-flight oracle
// calls: the result slice holds a nil entry for any block that failed, and
// the returned error joins every per-block failure rather than reporting
// only the first.
func (d *Decryptor) solveAll(ctx context.Context, prefix []block.Block, from, to int) ([]*forge.Solved, error) {
	n := to - from
	if n <= 0 {
		return nil, nil
	}

	results := make([]*forge.Solved, n)
	errs := make([]error, n)

	g := new(errgroup.Group)
	g.SetLimit(d.workerGroupLimit())

	for i := from; i < to; i++ {
		i := i
		g.Go(func() error {
			st := forge.New(prefix, i)
			solved, err := solveBlock(ctx, d.Oracle, d.Cache, d.Options, st, d.Sink)
			if err != nil {
				errs[i-from] = fmt.Errorf("decrypting block %d: %w", i, err)
				return nil
			}
			results[i-from] = &solved
			return nil
		})
	}
	g.Wait()

	return results, errors.Join(errs...)
}

// workerGroupLimit bounds how many target blocks are attacked concurrently.
// Each block's own byte search additionally bounds its 256-value sweep via
// Options.WorkerLimit. Both levels reuse that one knob, but each applies it
// separately: up to WorkerLimit blocks may each run up to WorkerLimit
// concurrent oracle calls, so there is no single process-wide bound.
func (d *Decryptor) workerGroupLimit() int {
	if d.Options.WorkerLimit <= 0 {
		return DefaultOptions().WorkerLimit
	}
	return d.Options.WorkerLimit
}
