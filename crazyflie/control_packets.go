package crazyflie

import (
	"encoding/binary"
	"math"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

// generic setpoint types
const (
	setpointTypeStop  byte = 0
	setpointTypeHover byte = 5
)

const (
	metaCommandNotifySetpointStop byte = 0
	platformCommandArming         byte = 1
)

func appendFloat32(b []byte, values ...float32) []byte {
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// ---- CONTROL REQUEST: HOVER SETPOINT ----
// Body-frame velocity in m/s (Vy positive to the left), yaw rate in deg/s
// and absolute height in m.
type ControlRequestHoverSetpoint struct {
	Vx, Vy, Yawrate, ZDistance float32
}

func (p *ControlRequestHoverSetpoint) Port() crtp.Port {
	return crtp.PortGenericSetpoint
}

func (p *ControlRequestHoverSetpoint) Channel() crtp.Channel {
	return 0
}

func (p *ControlRequestHoverSetpoint) Bytes() []byte {
	return appendFloat32([]byte{setpointTypeHover}, p.Vx, p.Vy, p.Yawrate, p.ZDistance)
}

// ---- CONTROL REQUEST: STOP SETPOINT ----
// Cuts the motors.
type ControlRequestStopSetpoint struct{}

func (p *ControlRequestStopSetpoint) Port() crtp.Port {
	return crtp.PortGenericSetpoint
}

func (p *ControlRequestStopSetpoint) Channel() crtp.Channel {
	return 0
}

func (p *ControlRequestStopSetpoint) Bytes() []byte {
	return []byte{setpointTypeStop}
}

// ---- CONTROL REQUEST: NOTIFY SETPOINT STOP ----
// Lets the high level commander take over once the last low level
// setpoint has been valid for RemainValidMillis.
type ControlRequestNotifySetpointStop struct {
	RemainValidMillis uint32
}

func (p *ControlRequestNotifySetpointStop) Port() crtp.Port {
	return crtp.PortGenericSetpoint
}

func (p *ControlRequestNotifySetpointStop) Channel() crtp.Channel {
	return 1
}

func (p *ControlRequestNotifySetpointStop) Bytes() []byte {
	return binary.LittleEndian.AppendUint32([]byte{metaCommandNotifySetpointStop}, p.RemainValidMillis)
}

// ---- PLATFORM REQUEST: ARMING ----
type PlatformRequestArming struct {
	Arm bool
}

func (p *PlatformRequestArming) Port() crtp.Port {
	return crtp.PortPlatform
}

func (p *PlatformRequestArming) Channel() crtp.Channel {
	return 0
}

func (p *PlatformRequestArming) Bytes() []byte {
	var arm byte
	if p.Arm {
		arm = 1
	}
	return []byte{platformCommandArming, arm}
}
