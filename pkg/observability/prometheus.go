// Package observability provides Prometheus metrics and the metrics server
package observability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//nolint:gochecknoglobals // Singleton pattern for metrics server
var (
	metricsServerInstance *http.Server
	mu                    sync.Mutex
)

// StartMetricsServer starts a Prometheus metrics server if it hasn't been started already.
// Listen errors are logged since the server runs in the background.
func StartMetricsServer(log logrus.FieldLogger, addr string) {
	mu.Lock()
	defer mu.Unlock()

	if metricsServerInstance != nil || addr == "" {
		return
	}

	sm := http.NewServeMux()
	sm.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 15 * time.Second,
		Handler:           sm,
	}
	metricsServerInstance = server

	go func() {
		log.WithField("addr", addr).Info("Starting metrics server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
}

// StopMetricsServer shuts the metrics server down, if one is running
func StopMetricsServer(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if metricsServerInstance == nil {
		return nil
	}

	err := metricsServerInstance.Shutdown(ctx)
	metricsServerInstance = nil

	return err
}
