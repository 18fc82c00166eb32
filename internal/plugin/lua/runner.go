// Package lua runs user command scripts against the document engine.
//
// A script sees a single global `document` table whose functions toggle
// and query formatting at the host's current selection. gopher-lua
// states are not goroutine-safe, so every script is executed on the
// runner's own goroutine; hosts may call from anywhere.
package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/command"
	"github.com/dshills/richdoc/internal/engine/selection"
)

// ErrRunnerClosed is returned when using a closed runner.
var ErrRunnerClosed = errors.New("lua runner is closed")

// SelectionFunc returns the host's current selection. It is called on
// the runner goroutine each time a script touches the document.
type SelectionFunc func() *selection.Range

// call is one unit of work for the runner goroutine.
type call struct {
	fn     func(L *glua.LState) error
	result chan error
}

// Runner owns a Lua state and serializes all script execution through a
// single goroutine.
type Runner struct {
	state  *glua.LState
	queue  chan *call
	done   chan struct{}
	closed atomic.Bool

	closeOnce sync.Once
}

// NewRunner creates a runner bound to an engine. The selection function
// supplies the range that script commands operate on.
func NewRunner(engine *command.Engine, sel SelectionFunc) *Runner {
	r := &Runner{
		state: glua.NewState(),
		queue: make(chan *call, 16),
		done:  make(chan struct{}),
	}
	r.register(engine, sel)
	go r.loop()
	return r
}

// DoString executes a script source synchronously.
func (r *Runner) DoString(ctx context.Context, src string) error {
	return r.execute(ctx, func(L *glua.LState) error {
		return L.DoString(src)
	})
}

// DoFile executes a script file synchronously.
func (r *Runner) DoFile(ctx context.Context, path string) error {
	return r.execute(ctx, func(L *glua.LState) error {
		return L.DoFile(path)
	})
}

// Close stops the runner. Scripts queued but not yet started fail with
// ErrRunnerClosed. Close is idempotent.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
	})
}

// execute queues work for the runner goroutine and waits for it.
func (r *Runner) execute(ctx context.Context, fn func(L *glua.LState) error) error {
	if r.closed.Load() {
		return ErrRunnerClosed
	}

	c := &call{fn: fn, result: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRunnerClosed
	case r.queue <- c:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-c.result:
		if !ok {
			return ErrRunnerClosed
		}
		return err
	}
}

// loop is the only goroutine allowed to touch the Lua state.
func (r *Runner) loop() {
	defer r.state.Close()
	for {
		select {
		case <-r.done:
			r.drain()
			return
		case c := <-r.queue:
			c.result <- r.run(c)
			close(c.result)
		}
	}
}

// run executes one call with panic recovery. Lua scripts can raise
// errors that surface as panics in registered Go functions.
func (r *Runner) run(c *call) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch v := rec.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("lua panic: %v", v)
			}
		}
	}()
	return c.fn(r.state)
}

// drain fails all queued calls after Close.
func (r *Runner) drain() {
	for {
		select {
		case c := <-r.queue:
			c.result <- ErrRunnerClosed
			close(c.result)
		default:
			return
		}
	}
}

// register installs the `document` table into the Lua state.
func (r *Runner) register(engine *command.Engine, sel SelectionFunc) {
	L := r.state
	mod := L.NewTable()

	L.SetField(mod, "toggle_mark", L.NewFunction(func(L *glua.LState) int {
		m, err := doc.ParseMark(L.CheckString(1))
		if err != nil {
			L.RaiseError("toggle_mark: %v", err)
		}
		if err := engine.ToggleMark(sel(), m); err != nil {
			L.RaiseError("toggle_mark: %v", err)
		}
		return 0
	}))

	L.SetField(mod, "toggle_block", L.NewFunction(func(L *glua.LState) int {
		f, err := doc.ParseFormat(L.CheckString(1))
		if err != nil {
			L.RaiseError("toggle_block: %v", err)
		}
		if err := engine.ToggleBlock(sel(), f); err != nil {
			L.RaiseError("toggle_block: %v", err)
		}
		return 0
	}))

	L.SetField(mod, "is_mark_active", L.NewFunction(func(L *glua.LState) int {
		m, err := doc.ParseMark(L.CheckString(1))
		if err != nil {
			L.RaiseError("is_mark_active: %v", err)
		}
		L.Push(glua.LBool(engine.IsMarkActive(sel(), m)))
		return 1
	}))

	L.SetField(mod, "is_block_active", L.NewFunction(func(L *glua.LState) int {
		f, err := doc.ParseFormat(L.CheckString(1))
		if err != nil {
			L.RaiseError("is_block_active: %v", err)
		}
		L.Push(glua.LBool(engine.IsBlockActive(sel(), f)))
		return 1
	}))

	L.SetField(mod, "revision", L.NewFunction(func(L *glua.LState) int {
		L.Push(glua.LString(engine.Document().Revision()))
		return 1
	}))

	L.SetGlobal("document", mod)
}
