package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/mibench/internal/config"
	"github.com/ahrav/mibench/internal/metrics"
	"github.com/ahrav/mibench/internal/worker"
)

const metricsShutdownTimeout = 5 * time.Second

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Host the benchmark workflow and its activities on a Temporal task queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var m metrics.Metrics = metrics.NewNoOp()
			if a.cfg.Observability.MetricsEnabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m = metrics.NewPrometheus(a.cfg.Observability.MetricsNamespace, reg)
				stop, err := a.serveMetrics(reg)
				if err != nil {
					return err
				}
				defer stop()
			}

			activities, err := worker.InitializeActivities(ctx, a.cfg, m, a.logger)
			if err != nil {
				return err
			}

			c, err := dialTemporal(a.cfg.Temporal, a)
			if err != nil {
				return err
			}
			defer c.Close()

			w := sdkworker.New(c, a.cfg.Temporal.TaskQueue, sdkworker.Options{})
			worker.RegisterAll(w, activities)

			a.logger.Info("worker started",
				"task_queue", a.cfg.Temporal.TaskQueue,
				"namespace", a.cfg.Temporal.Namespace,
				"results_backend", a.cfg.Results.Backend)
			stopCh := make(chan any)
			go func() {
				<-ctx.Done()
				close(stopCh)
			}()
			return w.Run(stopCh)
		},
	}
}

func dialTemporal(cfg config.TemporalConfig, a *app) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(a.logger),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to temporal at %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

// serveMetrics exposes reg on /metrics and returns a function that shuts the
// server down.
func (a *app) serveMetrics(reg *prometheus.Registry) (func(), error) {
	addr := net.JoinHostPort("", strconv.Itoa(a.cfg.Observability.MetricsPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "address", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
