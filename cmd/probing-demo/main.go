// Command probing-demo wires the C6 engine together with the builtin
// extensions and runs a couple of example queries against it, printing the
// results. It is a minimal illustration of the engine's wiring, not a CLI
// front end — the real argument-parsing REPL/CLI surface is out of scope
// (§1).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/forbearing/probing/bootstrap"
	"github.com/forbearing/probing/query"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "probing-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	e, err := bootstrap.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer bootstrap.Cleanup()

	for _, sql := range []string{
		"SHOW TABLES",
		"SELECT * FROM information_schema.df_settings",
		"SET torch.profiling = 'on'",
		"SELECT * FROM tracing.trace_event",
	} {
		resp := query.Run(e, query.Request{Expr: sql}, time.Now())
		fmt.Printf("query: %s\n", sql)
		fmt.Printf("  success=%v payload=%s\n", resp.Success, resp.Payload.Kind)
		if resp.Payload.Kind == query.PayloadFrame {
			fmt.Printf("  columns=%v rows=%d\n", resp.Payload.Columns, len(resp.Payload.Rows))
		}
		if !resp.Success {
			fmt.Printf("  message=%s\n", resp.Message)
		}
	}
	return nil
}
