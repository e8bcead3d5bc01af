package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"can-datalogger/controller"
	"can-datalogger/models"
	"can-datalogger/services/bus"
	"can-datalogger/services/imu"
	"can-datalogger/services/storage"
	"can-datalogger/utils"
)

// startablePort is a bus port with a background side (traffic producer
// or interrupt watcher) that must start after the intake registered its
// receive notification.
type startablePort interface {
	bus.Port
	Start(ctx context.Context)
}

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	configPath := flag.String("config", "config/logger.yaml", "path to logger.yaml")
	logFile := flag.String("log", "", "optional diagnostic log file (stderr is always included)")
	headless := flag.Bool("headless", false, "run without the status screen")
	record := flag.Bool("record", false, "start with recording enabled")
	transmit := flag.Bool("tx", false, "start with periodic transmit enabled")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.INFO, *logFile)
	defer logger.Close()

	// ── Config ───────────────────────────────────────────────────────
	cfg, err := utils.LoadLoggerConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			utils.L().Fatal("load config: %v", err)
		}
		utils.L().Warn("config %s not found, using built-in defaults", *configPath)
		cfg = &utils.LoggerConfig{}
		cfg.ApplyDefaults()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ──────────────────────────────────────────────────────
	mount := cfg.Storage.MountDir
	if mount == "" {
		mount = "recordings"
	}
	if err := os.MkdirAll(mount, 0755); err != nil {
		utils.L().Fatal("prepare mount dir %s: %v", mount, err)
	}
	store, err := storage.NewDiskStore(mount)
	if err != nil {
		utils.L().Fatal("open store: %v", err)
	}
	utils.L().Info("store ready            (dir=%s, ceiling=%d bytes)", store.Dir(), cfg.Storage.MaxFileBytes)

	// ── Bus port ─────────────────────────────────────────────────────
	var port startablePort
	if cfg.Bus.Device == "" {
		port = bus.NewSimPort(cfg.Bus.SimRateHz, nil)
	} else {
		scp, err := bus.OpenSocketCAN(cfg.Bus.Device)
		if err != nil {
			utils.L().Fatal("open bus: %v", err)
		}
		port = scp
	}
	defer port.Close()

	// ── Core assembly ────────────────────────────────────────────────
	probe, err := models.NewFrame(cfg.Bus.Probe.ID, cfg.Bus.Probe.Data)
	if err != nil {
		utils.L().Fatal("probe frame: %v", err)
	}

	clock := utils.NewMonotonicClock()
	history := models.NewFrameHistory(cfg.Bus.HistoryDepth)
	sessionLogger := controller.NewSessionLogger(
		store, clock,
		cfg.Storage.MaxFileBytes, cfg.Storage.FlushIntervalMs, cfg.Storage.BufferSizeKB)
	intake := controller.NewIntake(port, history, sessionLogger, clock)
	state := controller.NewAcquisitionState()

	if !cfg.IMU.Simulate {
		utils.L().Warn("no hardware imu driver on this build, sampling is simulated")
	}
	sampler := imu.NewSampler(imu.NewSimDriver())

	sched := controller.NewScheduler(
		state, intake, sessionLogger, sampler, port, clock,
		probe, cfg.Bus.Probe.Name,
		int64(cfg.Bus.TxIntervalMs), int64(cfg.IMU.SampleIntervalMs))

	if *transmit {
		state.ToggleTransmit()
	}
	if *record {
		state.ToggleLogging()
	}

	// The producer/watcher starts only after the intake registered its
	// notification callback.
	port.Start(ctx)

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	if *headless || cfg.UI.Headless {
		runHeadless(ctx, cancel, sched)
	} else {
		p := tea.NewProgram(newStatusModel(state, sched, cfg), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			utils.L().Error("status screen: %v", err)
		}
		cancel()
	}

	<-done
	snap := sched.Snapshot()
	utils.L().Info("shutdown complete      (tx=%d, rx=%d, bus_rows=%d, imu_rows=%d)",
		snap.TxCount, snap.RxCount, snap.BusRows, snap.MotionRows)
}

// runHeadless blocks on SIGINT/SIGTERM, printing stats periodically.
func runHeadless(ctx context.Context, cancel context.CancelFunc, sched *controller.Scheduler) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case sig := <-sigCh:
			utils.L().Info("received signal: %v, shutting down", sig)
			cancel()
			return
		case <-ctx.Done():
			return
		case <-statsTicker.C:
			snap := sched.Snapshot()
			utils.L().Info("stats  tx=%d rx=%d session=%s bus_rows=%d imu_rows=%d rotations=%d",
				snap.TxCount, snap.RxCount, snap.SessionID,
				snap.BusRows, snap.MotionRows, snap.Rotations)
		}
	}
}
