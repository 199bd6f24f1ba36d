// Package system assembles the exporter: engine adapter, measurement
// monitor, metrics registry, websocket hub and HTTP server, with one
// place owning startup order and graceful shutdown.
package system

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/api/rest"
	"github.com/jgosmann/linux-bsec-exporter/internal/api/websocket"
	"github.com/jgosmann/linux-bsec-exporter/internal/clock"
	"github.com/jgosmann/linux-bsec-exporter/internal/config"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
	"github.com/jgosmann/linux-bsec-exporter/internal/metrics"
	"github.com/jgosmann/linux-bsec-exporter/internal/monitor"
	"github.com/jgosmann/linux-bsec-exporter/internal/persist"
	"github.com/jgosmann/linux-bsec-exporter/internal/sensor"
)

type LifecycleManager struct {
	config *config.Config
	logger *zap.Logger

	raw  engine.RawEngine
	ctrl sensor.ForcedModeController
	clk  clock.Clock

	eng        *engine.Engine
	mon        *monitor.Monitor
	registry   *metrics.Registry
	wsHub      *websocket.Hub
	restServer *rest.Server

	cancelFeeders context.CancelFunc
	feedersDone   sync.WaitGroup

	shutdownOnce sync.Once
}

func NewLifecycleManager(
	cfg *config.Config,
	raw engine.RawEngine,
	ctrl sensor.ForcedModeController,
	logger *zap.Logger,
) *LifecycleManager {
	return &LifecycleManager{
		config: cfg,
		logger: logger,
		raw:    raw,
		ctrl:   ctrl,
		clk:    clock.NewTimeAlive(),
	}
}

// Monitor returns the running measurement monitor. Only valid after a
// successful Start.
func (lm *LifecycleManager) Monitor() *monitor.Monitor {
	return lm.mon
}

func (lm *LifecycleManager) Start() error {
	var sensorCap engine.Sensor = sensor.NewBME68x(
		lm.ctrl, lm.config.Sensor.InitialAmbientTempCelsius, lm.clk, lm.logger)
	if offset := lm.config.Bsec.TemperatureOffsetCelsius; offset != 0 {
		sensorCap = sensor.WithHeatSource(sensorCap, offset)
	}

	eng, err := engine.Open(lm.raw, sensorCap, lm.clk, lm.logger)
	if err != nil {
		return fmt.Errorf("acquiring fusion engine: %w", err)
	}
	lm.eng = eng
	lm.logger.Info("Fusion engine acquired", zap.String("version", eng.Version()))

	if err := lm.configureEngine(); err != nil {
		eng.Close()
		return err
	}

	store := persist.NewStateFile(lm.config.Bsec.StateFile)
	mon, err := monitor.Start(eng, store, lm.clk, lm.logger)
	if err != nil {
		eng.Close()
		return fmt.Errorf("starting monitor: %w", err)
	}
	lm.mon = mon

	ctx, cancel := context.WithCancel(context.Background())
	lm.cancelFeeders = cancel

	lm.wsHub = websocket.NewHub(lm.logger)
	lm.feedersDone.Add(2)
	go func() {
		defer lm.feedersDone.Done()
		lm.wsHub.Run(ctx)
	}()
	go func() {
		defer lm.feedersDone.Done()
		lm.feedOutputs(ctx)
	}()

	lm.restServer = rest.NewServer(
		lm.config.Exporter.ListenAddr, mon.Current, lm.registry.Handler(), lm.wsHub, lm.logger)
	return lm.restServer.Start()
}

// configureEngine loads the vendor configuration blob and applies the
// configured subscription table.
func (lm *LifecycleManager) configureEngine() error {
	blob, err := persist.LoadEngineConfig(lm.config.Bsec.Config)
	if err != nil {
		return err
	}
	if err := lm.eng.SetConfiguration(blob); err != nil {
		return fmt.Errorf("applying engine configuration: %w", err)
	}

	requests, err := lm.config.Bsec.SubscriptionRequests()
	if err != nil {
		return err
	}
	required, err := lm.eng.UpdateSubscription(requests)
	if err != nil {
		return fmt.Errorf("subscribing virtual sensors: %w", err)
	}
	for _, setting := range required {
		lm.logger.Debug("Engine requires physical sensor",
			zap.Stringer("sensor", setting.Sensor),
			zap.Float32("sample_rate", setting.SampleRate))
	}

	tracked := make([]engine.OutputKind, 0, len(requests))
	for _, req := range requests {
		if req.SampleRate != engine.SampleRateDisabled {
			tracked = append(tracked, req.Sensor)
		}
	}
	registry, err := metrics.NewRegistry(tracked)
	if err != nil {
		return fmt.Errorf("building metrics registry: %w", err)
	}
	lm.registry = registry
	return nil
}

// feedOutputs forwards every published output set to the metrics
// registry and the websocket hub.
func (lm *LifecycleManager) feedOutputs(ctx context.Context) {
	outputs, version := lm.mon.Current.Latest()
	for {
		lm.registry.Apply(outputs)
		lm.wsHub.Broadcast(websocket.NewReadingsMessage(outputs))

		var err error
		outputs, version, err = lm.mon.Current.Changed(ctx, version)
		if err != nil {
			return
		}
	}
}

// Shutdown stops the monitor, persists the final state snapshot and
// releases the engine. It honors ctx for the HTTP shutdown but always
// waits for the monitor's current step to finish.
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var firstErr error
	lm.shutdownOnce.Do(func() {
		lm.mon.RequestShutdown()
		eng, _, err := lm.mon.Wait()
		if err != nil {
			firstErr = err
		}
		eng.Close()
		lm.logger.Info("Monitor stopped, engine released")

		lm.cancelFeeders()
		lm.feedersDone.Wait()

		if err := lm.restServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
