package actuator

import "fmt"

// Frame layout: 0x55 0xAA | length | id | cmd | reg_lo | reg_hi | data... |
// checksum. length counts everything between itself and the checksum
// (exclusive); the checksum is the byte sum of everything after the two
// header bytes, truncated to 8 bits. Register values are 16-bit
// little-endian.
const (
	headerByte0 = 0x55
	headerByte1 = 0xAA

	cmdRead  = 0x30
	cmdWrite = 0x32
)

// Actuator register addresses.
const (
	RegID             = 0x16
	RegBaudrate       = 0x17
	RegClearErrors    = 0x18
	RegEmergencyStop  = 0x19
	RegSuspend        = 0x1A
	RegRestoreDefault = 0x1B
	RegSave           = 0x1C
	RegForceAct       = 0x1E
	RegOverCurrent    = 0x20
	RegTravelLimit    = 0x23
	RegControlMode    = 0x25 // 0x00 position, 0x02 speed, 0x03 force
	RegOutputVoltage  = 0x26
	RegTargetValue    = 0x27 // force target in force mode
	RegTargetSpeed    = 0x28 // speed target in speed mode
	RegTargetLocation = 0x29 // position target
	RegActualLocation = 0x2A
	RegCurrent        = 0x2B // mA
	RegActualForce    = 0x2C // grams
	RegTemperature    = 0x2E
	RegFaultCodes     = 0x2F
)

// Position travel limits in raw actuator units.
const (
	MinPosition = 0
	MaxPosition = 2000
)

// checksum sums the frame bytes after the two-byte header, truncated to 8
// bits.
func checksum(frame []byte) byte {
	var sum int
	for _, b := range frame[2:] {
		sum += int(b)
	}
	return byte(sum & 0xFF)
}

// encodeWrite builds a write frame setting count registers starting at reg.
func encodeWrite(id byte, reg uint16, values []uint16) []byte {
	payload := make([]byte, 0, 4+2*len(values))
	payload = append(payload, id, cmdWrite, byte(reg&0xFF), byte(reg>>8))
	for _, v := range values {
		payload = append(payload, byte(v&0xFF), byte(v>>8))
	}

	frame := make([]byte, 0, 4+len(payload))
	frame = append(frame, headerByte0, headerByte1, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame))
	return frame
}

// encodeRead builds a read frame requesting count registers starting at reg.
func encodeRead(id byte, reg uint16, count byte) []byte {
	payload := []byte{id, cmdRead, byte(reg & 0xFF), byte(reg >> 8), count}
	frame := make([]byte, 0, 4+len(payload))
	frame = append(frame, headerByte0, headerByte1, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame))
	return frame
}

// response is a decoded actuator reply.
type response struct {
	ID       byte
	Cmd      byte
	Register uint16
	Values   []uint16
}

// decodeResponse validates and decodes a reply frame. raw may contain
// trailing bytes from the bus; only the first complete frame is decoded.
func decodeResponse(raw []byte) (*response, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("actuator reply too short: %d bytes", len(raw))
	}
	if raw[0] != headerByte0 || raw[1] != headerByte1 {
		return nil, fmt.Errorf("actuator reply has bad header % X", raw[:2])
	}

	length := int(raw[2])
	total := 3 + length + 1 // header+length, payload, checksum
	if len(raw) < total {
		return nil, fmt.Errorf("actuator reply truncated: have %d bytes, frame needs %d", len(raw), total)
	}
	frame := raw[:total]

	if got, want := frame[total-1], checksum(frame[:total-1]); got != want {
		return nil, fmt.Errorf("actuator reply checksum mismatch: got 0x%02X, want 0x%02X", got, want)
	}
	if length < 4 {
		return nil, fmt.Errorf("actuator reply payload too short: %d bytes", length)
	}

	payload := frame[3 : 3+length]
	resp := &response{
		ID:       payload[0],
		Cmd:      payload[1],
		Register: uint16(payload[2]) | uint16(payload[3])<<8,
	}

	data := payload[4:]
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("actuator reply has odd data length %d", len(data))
	}
	for i := 0; i < len(data); i += 2 {
		resp.Values = append(resp.Values, uint16(data[i])|uint16(data[i+1])<<8)
	}
	return resp, nil
}
