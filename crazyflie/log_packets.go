package crazyflie

import (
	"encoding/binary"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

// log port channels
const (
	logChannelTOC     crtp.Channel = 0
	logChannelControl crtp.Channel = 1
	logChannelData    crtp.Channel = 2
)

// TOC commands, version 2 (16-bit variable ids)
const (
	logCommandGetItem byte = 0x02
	logCommandGetInfo byte = 0x03
)

// block control commands
const (
	logControlDeleteBlock byte = 0x02
	logControlStartBlock  byte = 0x03
	logControlStopBlock   byte = 0x04
	logControlReset       byte = 0x05
	logControlCreateBlock byte = 0x06
)

// ---- LOG REQUEST: GET INFO ----
type LogRequestGetInfo struct{}

func (p *LogRequestGetInfo) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestGetInfo) Channel() crtp.Channel {
	return logChannelTOC
}

func (p *LogRequestGetInfo) Bytes() []byte {
	return []byte{logCommandGetInfo}
}

// ---- LOG RESPONSE: GET INFO ----
type LogResponseGetInfo struct {
	Count     int
	CRC       uint32
	MaxPacket uint8
	MaxOps    uint8
}

func (p *LogResponseGetInfo) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogResponseGetInfo) Channel() crtp.Channel {
	return logChannelTOC
}

func (p *LogResponseGetInfo) LoadFromBytes(b []byte) error {
	if len(b) < 2 || b[1] != logCommandGetInfo {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 10 {
		return crtp.ErrorPacketTooShort
	}

	p.Count = int(binary.LittleEndian.Uint16(b[2:4]))
	p.CRC = binary.LittleEndian.Uint32(b[4:8])
	p.MaxPacket = b[8]
	p.MaxOps = b[9]
	return nil
}

// ---- LOG REQUEST: GET ITEM ----
type LogRequestGetItem struct{ ID uint16 }

func (p *LogRequestGetItem) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestGetItem) Channel() crtp.Channel {
	return logChannelTOC
}

func (p *LogRequestGetItem) Bytes() []byte {
	return binary.LittleEndian.AppendUint16([]byte{logCommandGetItem}, p.ID)
}

// ---- LOG RESPONSE: GET ITEM ----
type LogResponseGetItem struct {
	ID       uint16
	Datatype uint8
	Name     string
}

func (p *LogResponseGetItem) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogResponseGetItem) Channel() crtp.Channel {
	return logChannelTOC
}

func (p *LogResponseGetItem) LoadFromBytes(b []byte) error {
	if len(b) < 4 || b[1] != logCommandGetItem || binary.LittleEndian.Uint16(b[2:4]) != p.ID {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 5 {
		return crtp.ErrorPacketTooShort
	}

	name, ok := splitName(b[5:])
	if !ok {
		return crtp.ErrorPacketTooShort
	}
	p.Datatype = b[4] & 0x0F
	p.Name = name
	return nil
}

// ---- LOG REQUEST: RESET ----
type LogRequestReset struct{}

func (p *LogRequestReset) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestReset) Channel() crtp.Channel {
	return logChannelControl
}

func (p *LogRequestReset) Bytes() []byte {
	return []byte{logControlReset}
}

// ---- LOG REQUEST: BLOCK CREATE ----
type LogRequestBlockCreate struct {
	BlockID   uint8
	Variables []logItem
}

func (p *LogRequestBlockCreate) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestBlockCreate) Channel() crtp.Channel {
	return logChannelControl
}

// Bytes lays out one (storage<<4 | fetch) type byte and a 16-bit id per
// variable. Variables are fetched as they are stored.
func (p *LogRequestBlockCreate) Bytes() []byte {
	packet := make([]byte, 2, 2+3*len(p.Variables))
	packet[0] = logControlCreateBlock
	packet[1] = p.BlockID
	for _, v := range p.Variables {
		packet = append(packet, v.Datatype<<4|v.Datatype)
		packet = binary.LittleEndian.AppendUint16(packet, v.ID)
	}
	return packet
}

// ---- LOG REQUEST: BLOCK START ----
type LogRequestBlockStart struct {
	BlockID uint8
	Period  uint8 // in units of 10 ms
}

func (p *LogRequestBlockStart) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestBlockStart) Channel() crtp.Channel {
	return logChannelControl
}

func (p *LogRequestBlockStart) Bytes() []byte {
	return []byte{logControlStartBlock, p.BlockID, p.Period}
}

// ---- LOG REQUEST: BLOCK STOP ----
type LogRequestBlockStop struct {
	BlockID uint8
}

func (p *LogRequestBlockStop) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestBlockStop) Channel() crtp.Channel {
	return logChannelControl
}

func (p *LogRequestBlockStop) Bytes() []byte {
	return []byte{logControlStopBlock, p.BlockID}
}

// ---- LOG REQUEST: BLOCK DELETE ----
type LogRequestBlockDelete struct {
	BlockID uint8
}

func (p *LogRequestBlockDelete) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogRequestBlockDelete) Channel() crtp.Channel {
	return logChannelControl
}

func (p *LogRequestBlockDelete) Bytes() []byte {
	return []byte{logControlDeleteBlock, p.BlockID}
}

// ---- LOG RESPONSE: BLOCK CONTROL ----
// Every control command is answered with [command, block id, errno]. For
// reset the block id byte is unused.
type LogResponseBlockControl struct {
	Command byte
	BlockID uint8
}

func (p *LogResponseBlockControl) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogResponseBlockControl) Channel() crtp.Channel {
	return logChannelControl
}

func (p *LogResponseBlockControl) LoadFromBytes(b []byte) error {
	if len(b) < 2 || b[1] != p.Command {
		return crtp.ErrorPacketIncorrectType
	}
	if p.Command != logControlReset && (len(b) < 3 || b[2] != p.BlockID) {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 4 {
		return crtp.ErrorPacketTooShort
	}
	return logErrorFromCode(b[3])
}

// ---- LOG RESPONSE: DATA ----
type LogResponseData struct {
	BlockID   uint8
	Timestamp uint32 // ms, 24 bits
	Data      []byte
}

func (p *LogResponseData) Port() crtp.Port {
	return crtp.PortLog
}

func (p *LogResponseData) Channel() crtp.Channel {
	return logChannelData
}

func (p *LogResponseData) LoadFromBytes(b []byte) error {
	if len(b) < 5 {
		return crtp.ErrorPacketTooShort
	}
	p.BlockID = b[1]
	p.Timestamp = uint32(b[2]) | uint32(b[3])<<8 | uint32(b[4])<<16
	p.Data = b[5:]
	return nil
}
