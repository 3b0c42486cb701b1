// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/weft/pkg/compile"
	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/instrument"
	"github.com/kadirpekel/weft/pkg/runtime"
	"github.com/kadirpekel/weft/pkg/treefile"
)

// CompileCmd compiles a tree file for a number of ticks and prints the final
// compiled structure.
type CompileCmd struct {
	Tree          string `short:"t" required:"" help:"Path to the tree file." type:"path"`
	Ticks         int    `help:"Number of ticks to run." default:"1"`
	MaxIterations int    `name:"max-iterations" help:"Stabilization bound per tick." default:"10"`
	Output        string `short:"o" help:"Output format (yaml, json)." default:"yaml"`
	Debug         bool   `help:"Enable compiler debug diagnostics."`
	Observe       bool   `help:"Enable stdout tracing around lifecycle callbacks."`
}

func (c *CompileCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	el, err := treefile.NewLoader().Load(c.Tree)
	if err != nil {
		return err
	}

	opts := []compile.Option{
		compile.WithMaxIterations(c.MaxIterations),
		compile.WithDebug(c.Debug),
	}
	if c.Observe {
		if _, err := instrument.InitTracer(ctx, instrument.TracerConfig{
			Enabled:      true,
			ExporterType: "stdout",
			ServiceName:  "weft",
		}); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		opts = append(opts, compile.WithInstrumenter(
			instrument.NewLifecycle(instrument.Tracer("weft/cli"), nil)))
	}

	compiler := compile.New(runtime.NewModel(), opts...)
	defer func() {
		if err := compiler.Unmount(context.Background()); err != nil {
			slog.Warn("Unmount failed", "error", err)
		}
	}()

	var compiled *content.Compiled
	for tick := 1; tick <= c.Ticks; tick++ {
		st := &runtime.TickState{Tick: tick}
		res, err := compiler.CompileUntilStable(ctx, el, st)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if err := compiler.NotifyStart(ctx, st); err != nil {
			return fmt.Errorf("tick %d start: %w", tick, err)
		}
		if err := compiler.NotifyTickStart(ctx, st); err != nil {
			return fmt.Errorf("tick %d tick-start: %w", tick, err)
		}
		if err := compiler.NotifyTickEnd(ctx, st); err != nil {
			return fmt.Errorf("tick %d tick-end: %w", tick, err)
		}
		compiled = res.Compiled
		slog.Debug("Tick compiled",
			"tick", tick, "iterations", res.Iterations, "forced_stable", res.ForcedStable)
	}
	if err := compiler.NotifyComplete(ctx, &runtime.TickState{Tick: c.Ticks}); err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	return printCompiled(compiled, c.Output)
}

// WatchCmd recompiles the tree file on every change.
type WatchCmd struct {
	Tree        string `short:"t" required:"" help:"Path to the tree file." type:"path"`
	Output      string `short:"o" help:"Output format (yaml, json)." default:"yaml"`
	MetricsPort int    `name:"metrics-port" help:"Expose Prometheus metrics on this port (0 = off)."`
}

func (c *WatchCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	loader := treefile.NewLoader()
	g, ctx := errgroup.WithContext(ctx)

	if c.MetricsPort > 0 {
		cfg := instrument.MetricsConfig{Enabled: true, Port: c.MetricsPort}
		if _, err := instrument.InitMetrics(ctx, cfg); err != nil {
			return err
		}
		g.Go(func() error { return instrument.ServeMetrics(cfg) })
		slog.Info("Metrics endpoint ready", "port", c.MetricsPort)
	}

	model := runtime.NewModel()
	compiler := compile.New(model)
	tick := 0

	recompile := func(el *compile.Element, err error) {
		if err != nil {
			slog.Error("Tree reload failed", "error", err)
			return
		}
		tick++
		res, err := compiler.CompileUntilStable(ctx, el, &runtime.TickState{Tick: tick})
		if err != nil {
			slog.Error("Compile failed", "error", err)
			return
		}
		if err := printCompiled(res.Compiled, c.Output); err != nil {
			slog.Error("Output failed", "error", err)
		}
	}

	// Initial compile, then recompile on every save.
	recompile(loader.Load(c.Tree))
	slog.Info("Watching tree file", "path", c.Tree)

	g.Go(func() error {
		err := loader.Watch(ctx, c.Tree, recompile)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

// ValidateCmd parses a tree file and reports errors without compiling.
type ValidateCmd struct {
	Tree string `short:"t" required:"" help:"Path to the tree file." type:"path"`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	if _, err := treefile.NewLoader().Load(c.Tree); err != nil {
		return err
	}
	fmt.Printf("%s: OK\n", c.Tree)
	return nil
}

func printCompiled(compiled *content.Compiled, format string) error {
	if compiled == nil {
		return nil
	}
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(compiled)
	default:
		out, err := yaml.Marshal(compiled)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
