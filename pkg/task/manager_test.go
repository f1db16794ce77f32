package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestRun(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.Background())

	boom := errors.New("boom")
	m.Add("task", func(context.Context) error { return boom })
	is.True(m.Exists("task"))

	done := make(chan error, 1)
	m.Run("task", done)
	is.Equal(<-done, boom)
	is.True(!m.Exists("task"))
}

func TestRunNotFound(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.Background())

	done := make(chan error, 1)
	m.Run("nope", done)
	is.Equal(<-done, ErrNotFound)
	is.Equal(m.Stop("nope"), ErrNotFound)
}

func TestAddTwice(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.Background())

	var calls atomic.Int32
	fn := func(context.Context) error {
		calls.Add(1)
		return nil
	}
	m.Add("task", fn)
	m.Add("task", fn)

	done := make(chan error, 1)
	m.Run("task", done)
	is.NoErr(<-done)
	is.Equal(calls.Load(), int32(1))
}

func TestGoOutlivesCaller(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.Background())

	reqCtx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	done := m.Go("task", func(ctx context.Context) error {
		cancel()
		<-reqCtx.Done()
		ran.Store(ctx.Err() == nil)
		return nil
	})

	m.Wait()
	is.NoErr(<-done)
	is.True(ran.Load())
}

func TestManagerCanceled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx)

	done := m.Go("task", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	time.AfterFunc(10*time.Millisecond, cancel)
	is.True(errors.Is(<-done, context.Canceled))
	m.Wait()
}
