// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/metrics"
	"github.com/xkilldash9x/embody-cli/internal/observability"
	"github.com/xkilldash9x/embody-cli/internal/scenario"
)

type runOptions struct {
	reportPath string
	pretty     bool
}

func newRunCmd() *cobra.Command {
	var (
		opts        runOptions
		metricsAddr string
		realtime    bool
		maxFrames   int
	)

	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Runs one or more scenario files to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			// Flags override the loaded configuration.
			flags := cmd.Flags()
			if flags.Changed("realtime") {
				cfg.SetEngineRealtime(realtime)
			}
			if flags.Changed("max-frames") {
				cfg.SetEngineMaxFrames(maxFrames)
			}
			if flags.Changed("metrics-addr") {
				cfg.SetMetricsListenAddr(metricsAddr)
				cfg.MetricsCfg.Enabled = metricsAddr != ""
			}

			return runScenarios(ctx, cfg, args, opts, cmd.OutOrStdout(), observability.GetLogger())
		},
	}

	runCmd.Flags().StringVarP(&opts.reportPath, "report", "r", "", "write JSON reports to this file (- for stdout)")
	runCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON reports")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames against the wall clock")
	runCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "frame budget per scenario (0 = unbounded)")
	return runCmd
}

// runScenarios loads every scenario up front, then runs them concurrently up
// to engine.parallelism. A scenario that does not finish does not cancel the
// others; all failures are returned together.
func runScenarios(ctx context.Context, cfg config.Interface, paths []string, opts runOptions, out io.Writer, logger *zap.Logger) error {
	scenarios := make([]*scenario.Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, s)
	}

	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg, cfg.Metrics().Namespace)
	if mc := cfg.Metrics(); mc.Enabled {
		stop, addr, err := serveMetrics(mc.ListenAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("Serving metrics.", zap.String("addr", addr))
	}

	reports := make([]*scenario.Report, len(scenarios))
	failures := make([]error, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Engine().Parallelism)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			w, err := scenario.Build(s, cfg, logger, m)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			report, err := w.Run(gctx)
			reports[i] = report
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				failures[i] = fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			return nil
		})
	}
	groupErr := g.Wait()

	if err := writeReports(reports, opts, out); err != nil {
		return err
	}
	if groupErr != nil {
		return groupErr
	}
	return errors.Join(failures...)
}

func writeReports(reports []*scenario.Report, opts runOptions, out io.Writer) error {
	if opts.reportPath == "" {
		for _, r := range reports {
			if r != nil {
				printSummary(out, r)
			}
		}
		return nil
	}

	dst := out
	if opts.reportPath != "-" {
		path, err := homedir.Expand(opts.reportPath)
		if err != nil {
			return fmt.Errorf("failed to expand report path: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		dst = f
	}
	for _, r := range reports {
		if r == nil {
			continue
		}
		if err := r.Encode(dst, opts.pretty); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(out io.Writer, r *scenario.Report) {
	status := "finished"
	if !r.Finished {
		status = "unfinished"
	}
	fmt.Fprintf(out, "%s: %s after %d frames\n", r.Scenario, status, r.Frames)
	for _, a := range r.Agents {
		for _, act := range a.Actions {
			line := fmt.Sprintf("  %s  %-5s %-9s", a.Name, act.Kind, act.State)
			if act.Code != "" {
				line += " " + act.Code
			}
			fmt.Fprintln(out, line)
		}
		if a.Pending > 0 {
			fmt.Fprintf(out, "  %s  %d action(s) never ran\n", a.Name, a.Pending)
		}
	}
}

// serveMetrics exposes reg on addr until stop is called. The returned address
// is the one actually bound, which matters for ":0".
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) (stop func(), bound string, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed.", zap.Error(err))
		}
	}()

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server did not shut down cleanly.", zap.Error(err))
		}
		<-done
	}
	return stop, ln.Addr().String(), nil
}
