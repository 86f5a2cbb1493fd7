// Command actuator drives Inspire actuators over a serial bus: set target
// positions, read status, clear faults and log telemetry to CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kinetic-data/motion.report/internal/actuator"
	"github.com/kinetic-data/motion.report/internal/config"
	"github.com/kinetic-data/motion.report/internal/fsutil"
	"github.com/kinetic-data/motion.report/internal/monitoring"
)

var (
	portPath    = flag.String("port", "", "Serial port (e.g. /dev/ttyUSB0)")
	baudRate    = flag.Int("baud", 0, "Baud rate")
	configPath  = flag.String("config", "", "JSON config file")
	setSpec     = flag.String("set", "", "Position commands, comma separated id=pos pairs (e.g. 3=1500,4=0)")
	readIDs     = flag.String("read", "", "Comma separated actuator ids to read status from")
	clearIDs    = flag.String("clear", "", "Comma separated actuator ids to clear faults on")
	stopIDs     = flag.String("stop", "", "Comma separated actuator ids to emergency stop")
	logIDs      = flag.String("log", "", "Comma separated actuator ids to log telemetry for until interrupted")
	logDir      = flag.String("log-dir", "", "Directory for telemetry CSV logs")
	logInterval = flag.Duration("interval", 0, "Telemetry poll interval (0 uses the config value)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("actuator: %v", err)
	}
}

func run() error {
	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	port := cfg.GetSerialPort()
	if *portPath != "" {
		port = *portPath
	}
	baud := cfg.GetBaudRate()
	if *baudRate != 0 {
		baud = *baudRate
	}

	p, err := actuator.Open(port, baud)
	if err != nil {
		return err
	}
	ctrl := actuator.NewController(p)
	defer ctrl.Close()

	if *stopIDs != "" {
		ids, err := parseIDs(*stopIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := ctrl.EmergencyStop(id); err != nil {
				return err
			}
			monitoring.Logf("actuator %d: emergency stop sent", id)
		}
		return nil
	}

	if *clearIDs != "" {
		ids, err := parseIDs(*clearIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := ctrl.ClearErrors(id); err != nil {
				return err
			}
			monitoring.Logf("actuator %d: faults cleared", id)
		}
	}

	if *setSpec != "" {
		if err := applyPositions(ctrl, *setSpec); err != nil {
			return err
		}
	}

	if *readIDs != "" {
		ids, err := parseIDs(*readIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			status, err := ctrl.ReadStatus(id)
			if err != nil {
				return err
			}
			fmt.Printf("actuator %d: position=%d current=%dmA force=%dg faults=0x%02X\n",
				id, status.Position, status.Current, status.Force, status.Faults)
		}
	}

	if *logIDs != "" {
		return logTelemetry(ctrl, cfg)
	}
	return nil
}

func applyPositions(ctrl *actuator.Controller, spec string) error {
	for _, pair := range strings.Split(spec, ",") {
		id, pos, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return fmt.Errorf("invalid -set entry %q, want id=pos", pair)
		}
		idVal, err := strconv.Atoi(id)
		if err != nil || idVal < 0 || idVal > 255 {
			return fmt.Errorf("invalid actuator id %q", id)
		}
		posVal, err := strconv.Atoi(pos)
		if err != nil {
			return fmt.Errorf("invalid position %q for actuator %s", pos, id)
		}
		if err := ctrl.SetPosition(byte(idVal), posVal); err != nil {
			return err
		}
		monitoring.Logf("actuator %d: target position %d", idVal, posVal)
	}
	return nil
}

func logTelemetry(ctrl *actuator.Controller, cfg *config.PipelineConfig) error {
	ids, err := parseIDs(*logIDs)
	if err != nil {
		return err
	}

	dir := *logDir
	if dir == "" {
		dir = "experiments/actuator"
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("actuator_data_%s.csv", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create telemetry log: %w", err)
	}
	defer f.Close()

	interval := cfg.GetLogInterval()
	if *logInterval > 0 {
		interval = *logInterval
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	monitoring.Logf("logging actuators %v to %s every %s (interrupt to stop)", ids, path, interval)
	return ctrl.LogTelemetry(ctx, f, ids, interval)
}

func parseIDs(spec string) ([]byte, error) {
	parts := strings.Split(spec, ",")
	ids := make([]byte, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid actuator id %q", part)
		}
		ids = append(ids, byte(v))
	}
	return ids, nil
}
