package actuator

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kinetic-data/motion.report/internal/monitoring"
)

// Controller issues register commands to actuators on one serial bus.
// Access is sequential: the bus is half-duplex, so a command's reply must be
// consumed before the next command is sent.
type Controller struct {
	port Porter
}

// NewController wraps an open port.
func NewController(port Porter) *Controller {
	return &Controller{port: port}
}

// Close closes the underlying port.
func (c *Controller) Close() error { return c.port.Close() }

// WriteRegister writes values to consecutive registers starting at reg.
func (c *Controller) WriteRegister(id byte, reg uint16, values ...uint16) error {
	frame := encodeWrite(id, reg, values)
	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("actuator %d: write register 0x%02X: %w", id, reg, err)
	}
	// Write commands are acknowledged with an echo frame; drain it so the
	// next command starts from a clean bus.
	buf := make([]byte, 64)
	if _, err := c.port.Read(buf); err != nil && err != io.EOF {
		return fmt.Errorf("actuator %d: drain ack for register 0x%02X: %w", id, reg, err)
	}
	return nil
}

// ReadRegister reads count consecutive registers starting at reg.
func (c *Controller) ReadRegister(id byte, reg uint16, count byte) ([]uint16, error) {
	frame := encodeRead(id, reg, count)
	if _, err := c.port.Write(frame); err != nil {
		return nil, fmt.Errorf("actuator %d: request register 0x%02X: %w", id, reg, err)
	}

	// The port read times out with zero bytes on a silent bus, so
	// accumulate until a full frame arrives or the attempts run out.
	buf := make([]byte, 0, 16+2*int(count))
	tmp := make([]byte, 64)
	for attempts := 0; attempts < 8; attempts++ {
		n, err := c.port.Read(tmp)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("actuator %d: read register 0x%02X: %w", id, reg, err)
		}
		buf = append(buf, tmp[:n]...)
		if len(buf) >= 4 && len(buf) >= int(buf[2])+4 {
			break
		}
		if err == io.EOF {
			break
		}
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("actuator %d: no reply for register 0x%02X", id, reg)
	}
	resp, err := decodeResponse(buf)
	if err != nil {
		return nil, fmt.Errorf("actuator %d: register 0x%02X: %w", id, reg, err)
	}
	if resp.ID != id {
		return nil, fmt.Errorf("actuator %d: reply from actuator %d", id, resp.ID)
	}
	if len(resp.Values) < int(count) {
		return nil, fmt.Errorf("actuator %d: register 0x%02X: got %d values, want %d", id, reg, len(resp.Values), count)
	}
	return resp.Values[:count], nil
}

// SetPosition commands the actuator to the target position, clamped to the
// travel limits.
func (c *Controller) SetPosition(id byte, position int) error {
	if position < MinPosition {
		position = MinPosition
	}
	if position > MaxPosition {
		position = MaxPosition
	}
	return c.WriteRegister(id, RegTargetLocation, uint16(position))
}

// ReadPosition returns the actuator's actual position.
func (c *Controller) ReadPosition(id byte) (int, error) {
	v, err := c.ReadRegister(id, RegActualLocation, 1)
	if err != nil {
		return 0, err
	}
	return int(v[0]), nil
}

// Status is one telemetry sample from an actuator.
type Status struct {
	Position int // raw position units
	Current  int // mA
	Force    int // grams
	Faults   int
}

// ReadStatus reads position, current and force in one bus transaction plus
// the fault register.
func (c *Controller) ReadStatus(id byte) (Status, error) {
	v, err := c.ReadRegister(id, RegActualLocation, 3)
	if err != nil {
		return Status{}, err
	}
	faults, err := c.ReadRegister(id, RegFaultCodes, 1)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Position: int(v[0]),
		Current:  int(v[1]),
		Force:    int(v[2]),
		Faults:   int(faults[0]),
	}, nil
}

// EmergencyStop halts the actuator immediately.
func (c *Controller) EmergencyStop(id byte) error {
	return c.WriteRegister(id, RegEmergencyStop, 1)
}

// ClearErrors clears the actuator's latched fault codes.
func (c *Controller) ClearErrors(id byte) error {
	return c.WriteRegister(id, RegClearErrors, 1)
}

// LogTelemetry polls the given actuators at the interval and appends CSV
// rows (timestamp, actuator id, position, current, force, faults) to w
// until ctx is cancelled. Poll errors are logged and skipped; a flaky bus
// should not end a capture session.
func (c *Controller) LogTelemetry(ctx context.Context, w io.Writer, ids []byte, interval time.Duration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "actuator_id", "position", "current_ma", "force_g", "faults"}); err != nil {
		return fmt.Errorf("write telemetry header: %w", err)
	}
	cw.Flush()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Flush()
			return cw.Error()
		case now := <-ticker.C:
			for _, id := range ids {
				status, err := c.ReadStatus(id)
				if err != nil {
					monitoring.Logf("telemetry: actuator %d: %v", id, err)
					continue
				}
				row := []string{
					now.Format(time.RFC3339Nano),
					strconv.Itoa(int(id)),
					strconv.Itoa(status.Position),
					strconv.Itoa(status.Current),
					strconv.Itoa(status.Force),
					strconv.Itoa(status.Faults),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("write telemetry row: %w", err)
				}
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		}
	}
}
