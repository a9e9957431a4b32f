package bootstrap

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _initializer = new(initializer)

type initializer struct {
	mu       sync.Mutex
	fns      []func() error // run init function in current goroutine.
	gos      []func() error // run init function in new goroutine and collect errors via errgroup.
	cleanups []func() error // run in reverse order on Cleanup.
}

func (i *initializer) Register(fn ...func() error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fns = append(i.fns, fn...)
}

func (i *initializer) RegisterGo(fn ...func() error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gos = append(i.gos, fn...)
}

func (i *initializer) RegisterCleanup(fn ...func() error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cleanups = append(i.cleanups, fn...)
}

// Init executes all registered initialization functions sequentially
// and logs their execution time for performance monitoring.
func (i *initializer) Init() error {
	i.mu.Lock()
	fns := i.fns
	i.fns = nil
	i.mu.Unlock()

	for j := range fns {
		fn := fns[j]
		if fn == nil {
			continue
		}
		if err := i.executeWithTiming(fn); err != nil {
			return err
		}
	}
	return nil
}

func (i *initializer) Go() error {
	i.mu.Lock()
	gos := i.gos
	i.gos = nil
	i.mu.Unlock()

	g, _ := errgroup.WithContext(context.Background())
	for _, fn := range gos {
		if fn == nil {
			continue
		}
		g.Go(fn)
	}
	return g.Wait()
}

// Cleanup runs every registered cleanup function in reverse registration
// order, logging (not stopping on) individual failures.
func (i *initializer) Cleanup() {
	i.mu.Lock()
	cleanups := i.cleanups
	i.cleanups = nil
	i.mu.Unlock()

	for j := len(cleanups) - 1; j >= 0; j-- {
		if cleanups[j] == nil {
			continue
		}
		if err := cleanups[j](); err != nil {
			zap.S().Errorw("cleanup function failed", "function", i.getFunctionName(cleanups[j]), "error", err)
		}
	}
}

// executeWithTiming executes a function and logs its execution time.
func (i *initializer) executeWithTiming(fn func() error) error {
	funcName := i.getFunctionName(fn)

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		zap.S().Debugw("init function executed", "function", funcName, "cost", duration)
	}()

	return fn()
}

func (i *initializer) getFunctionName(fn func() error) string {
	if fn == nil {
		return "<nil>"
	}

	pc := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if pc == nil {
		return "<unknown>"
	}

	fullName := pc.Name()
	if lastSlash := strings.LastIndex(fullName, "/"); lastSlash >= 0 {
		fullName = fullName[lastSlash+1:]
	}

	return fullName
}

func Register(fn ...func() error)       { _initializer.Register(fn...) }
func RegisterGo(fn ...func() error)      { _initializer.RegisterGo(fn...) }
func RegisterCleanup(fn ...func() error) { _initializer.RegisterCleanup(fn...) }
func Init() (err error)                 { return _initializer.Init() }
func Go() (err error)                   { return _initializer.Go() }
func Cleanup()                          { _initializer.Cleanup() }
