// Package jssandbox runs Transformer/Condition node scripts in an isolated
// JavaScript interpreter, per spec §4.5.
//
// Grounded on Yoriyoi-drop-citadel-agent/backend/internal/plugins/sandbox_js.go's
// pooled-otto-VM shape: a pre-populated channel of *otto.Otto, acquire/discard-
// and-respawn on release so no interpreter state leaks between node
// invocations. github.com/robertkrimen/otto is the only embeddable-JS
// interpreter in the example pack (the teacher's expr-lang/expr is an
// expression language, not JS, and stays in use elsewhere — see DESIGN.md).
package jssandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robertkrimen/otto"

	"github.com/openobserve/swisspipe/pkg/models"
)

// Config controls pool size and the default CPU ceiling. True heap-byte
// limits are not enforceable in a pure-Go otto VM; CPUTimeout is the only
// bound this sandbox can actually enforce (see DESIGN.md).
type Config struct {
	PoolSize   int
	CPUTimeout time.Duration
}

// DefaultConfig matches spec §4.5's default 200ms CPU ceiling.
func DefaultConfig() Config {
	return Config{PoolSize: 8, CPUTimeout: 200 * time.Millisecond}
}

// Sandbox is a pool of disposable otto VMs.
type Sandbox struct {
	cfg  Config
	pool chan *otto.Otto
}

// New builds a Sandbox and pre-populates its VM pool.
func New(cfg Config) *Sandbox {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 8
	}
	if cfg.CPUTimeout <= 0 {
		cfg.CPUTimeout = 200 * time.Millisecond
	}
	s := &Sandbox{cfg: cfg, pool: make(chan *otto.Otto, cfg.PoolSize)}
	for i := 0; i < cfg.PoolSize; i++ {
		s.pool <- freshVM()
	}
	return s
}

// maxLogLines caps the number of console.log lines captured per invocation so a
// runaway script can't exhaust memory logging to itself.
const maxLogLines = 200

func freshVM() *otto.Otto {
	vm := otto.New()
	// otto's standard ES5 built-ins (JSON, Math, Date, ...) stay available.
	// The only Go functions bound are the inert __noop below and, per call
	// in Execute, console.log; none gives scripts I/O, network or timers.
	vm.Set("__noop", func(call otto.FunctionCall) otto.Value { return otto.UndefinedValue() })
	return vm
}

// Execute runs script against event, exposed to the script as the global
// `event`. It blocks up to the pool's implicit availability (no separate
// wait timeout — a starved pool means the worker pool itself is saturated,
// which is a job-queue concern, not a sandbox one) and enforces cfg.CPUTimeout
// via otto's Interrupt channel.
func (s *Sandbox) Execute(ctx context.Context, script string, event map[string]any) (any, []string, error) {
	var vm *otto.Otto
	select {
	case vm = <-s.pool:
	case <-ctx.Done():
		return nil, nil, models.NewSPError(models.ErrorKindCancelled, ctx.Err())
	}
	defer func() { s.pool <- freshVM() }()

	var logs []string
	vm.Set("event", event)
	vm.Set("console", map[string]any{
		"log": func(call otto.FunctionCall) otto.Value {
			if len(logs) < maxLogLines {
				parts := make([]string, 0, len(call.ArgumentList))
				for _, a := range call.ArgumentList {
					parts = append(parts, a.String())
				}
				logs = append(logs, strings.Join(parts, " "))
			}
			return otto.UndefinedValue()
		},
	})

	timeoutCtx, cancel := context.WithTimeout(ctx, s.cfg.CPUTimeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	resultCh := make(chan result, 1)
	vm.Interrupt = make(chan func(), 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: fmt.Errorf("script panic: %v", r)}
			}
		}()
		value, err := vm.Run(script)
		if err != nil {
			resultCh <- result{err: models.NewSPError(models.ErrorKindScriptError, err)}
			return
		}
		exported, err := value.Export()
		if err != nil {
			resultCh <- result{err: models.NewSPError(models.ErrorKindScriptError, err)}
			return
		}
		resultCh <- result{value: exported}
	}()

	select {
	case res := <-resultCh:
		return res.value, logs, res.err
	case <-timeoutCtx.Done():
		vm.Interrupt <- func() { panic("script cpu timeout") }
		select {
		case res := <-resultCh:
			if res.err == nil {
				return res.value, logs, nil
			}
			return nil, logs, models.NewSPError(models.ErrorKindScriptTimeout, timeoutCtx.Err())
		case <-time.After(100 * time.Millisecond):
			return nil, logs, models.NewSPError(models.ErrorKindScriptTimeout, timeoutCtx.Err())
		}
	}
}
