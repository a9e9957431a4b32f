package bootstrap

import (
	"context"
	"sync"

	"github.com/forbearing/probing/bootstrapenv"
	"github.com/forbearing/probing/config"
	"github.com/forbearing/probing/engine"
	"github.com/forbearing/probing/extension/builtin/procinfo"
	"github.com/forbearing/probing/extension/builtin/promstats"
	"github.com/forbearing/probing/extension/builtin/python"
	"github.com/forbearing/probing/extension/builtin/rdma"
	"github.com/forbearing/probing/extension/builtin/torch"
	"github.com/forbearing/probing/logger"
	"github.com/forbearing/probing/sqlengine"
	"github.com/forbearing/probing/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// traceBufferCapacity bounds the in-memory trace_event ring buffer
// installed at bootstrap; §9's open question on overflow policy is
// resolved as drop-oldest (tracing.RingBuffer's only mode).
const traceBufferCapacity = 4096

var (
	initialized bool
	mu          sync.Mutex
)

// Bootstrap sequences process startup: derive the environment-driven
// listen address (§6), bring up structured logging, register the builtin
// extensions and build the process-global engine (C6). Idempotent — a
// second call is a no-op returning the already-built engine.
func Bootstrap(ctx context.Context) (*engine.Engine, error) {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return engine.Global(), nil
	}

	cfg, err := config.Init()
	if err != nil {
		return nil, err
	}
	env := bootstrapenv.FromOS()
	env.LogLevel = cfg.LogLevel
	env.Port = cfg.Port
	env.AddrPattern = cfg.AddrPattern

	bind, err := bootstrapenv.Derive(env)
	if err != nil {
		return nil, err
	}

	var built *engine.Engine
	Register(
		func() error { return logger.Init(logger.Options{Level: bind.LogLevel}) },
		func() error {
			built, err = buildEngine(ctx)
			return err
		},
	)
	if err := Init(); err != nil {
		return nil, err
	}

	engine.SetGlobal(built)
	RegisterCleanup(func() error {
		built.Close()
		return nil
	})
	RegisterCleanup(func() error {
		logger.Sync()
		return nil
	})

	initialized = true
	return built, nil
}

// buildEngine wires every builtin extension into a fresh engine.Builder and
// builds it per §4.6.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	buffer := tracing.NewRingBuffer(traceBufferCapacity)
	tracing.SetSink(buffer)

	b := engine.NewBuilder().
		WithExtension(procinfo.New()).
		WithExtension(promstats.New(prometheus.DefaultGatherer)).
		WithExtension(torch.New()).
		WithExtension(rdma.New()).
		WithExtension(python.New()).
		WithPlugin(sqlengine.TraceEventPlugin(buffer))
	return b.Build(ctx)
}

// Run executes every RegisterGo'd concurrent task and waits for completion
// or the first failure; deferred Cleanup runs registered teardown
// functions in reverse order.
func Run() error {
	defer Cleanup()
	return Go()
}
