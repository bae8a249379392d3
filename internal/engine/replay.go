package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivlev/selfieframe/internal/capture"
	"github.com/ivlev/selfieframe/internal/script"
)

// Replay performs the steps of s against the booth. Refused actions, such as
// a capture without a camera, are reported and skipped the way a disabled
// button would ignore a click. Camera and export failures stop the replay.
func (b *Booth) Replay(ctx context.Context, s *script.Script) error {
	if s.Viewport != nil {
		if err := b.SetViewport(ctx, s.Viewport.W, s.Viewport.H); err != nil {
			return err
		}
	}

	fmt.Printf("[*] Replaying %d steps...\n", len(s.Steps))
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := b.Apply(ctx, st)
		switch {
		case err == nil:
		case Refused(err):
			fmt.Printf("[-] Step %d (%s) skipped: %v\n", i+1, st.Action, err)
		default:
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	fmt.Println("[+] Replay finished")
	return nil
}

// Refused reports errors that mean the action was not available right now.
func Refused(err error) bool {
	return errors.Is(err, capture.ErrNoLiveSource) ||
		errors.Is(err, capture.ErrNoFrame) ||
		errors.Is(err, capture.ErrNothingToExport)
}

// Apply performs a single step.
func (b *Booth) Apply(ctx context.Context, st script.Step) error {
	switch st.Action {
	case script.ActionStart:
		return b.Start(ctx)
	case script.ActionStop:
		return b.Stop(ctx)
	case script.ActionCapture:
		return b.Capture(ctx)
	case script.ActionReset:
		return b.Reset(ctx)
	case script.ActionExport:
		return b.Export(ctx, st.Name)
	case script.ActionPress:
		return b.Press(ctx, st.Pointer, st.X, st.Y)
	case script.ActionMove:
		return b.Move(ctx, st.Pointer, st.X, st.Y)
	case script.ActionRelease:
		return b.Release(ctx, st.Pointer)
	case script.ActionCancel:
		return b.Cancel(ctx, st.Pointer)
	case script.ActionWheel:
		for i := 0; i < st.Times(); i++ {
			if err := b.Wheel(ctx, st.DeltaY); err != nil {
				return err
			}
		}
		return nil
	case script.ActionTick:
		for i := 0; i < st.Times(); i++ {
			if err := b.Tick(ctx); err != nil {
				return err
			}
		}
		return nil
	case script.ActionWait:
		select {
		case <-time.After(time.Duration(st.Millis) * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

