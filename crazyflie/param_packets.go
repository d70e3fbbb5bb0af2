package crazyflie

import (
	"encoding/binary"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

// param port channels
const (
	paramChannelTOC   crtp.Channel = 0
	paramChannelRead  crtp.Channel = 1
	paramChannelWrite crtp.Channel = 2
)

// TOC commands, version 2
const (
	paramCommandGetItem byte = 0x02
	paramCommandGetInfo byte = 0x03
)

const (
	paramMetaTypeMask = 0x0F
	paramMetaReadOnly = 1 << 6
)

// ---- PARAM REQUEST: GET INFO ----
type ParamRequestGetInfo struct{}

func (p *ParamRequestGetInfo) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamRequestGetInfo) Channel() crtp.Channel {
	return paramChannelTOC
}

func (p *ParamRequestGetInfo) Bytes() []byte {
	return []byte{paramCommandGetInfo}
}

// ---- PARAM RESPONSE: GET INFO ----
type ParamResponseGetInfo struct {
	Count int
	CRC   uint32
}

func (p *ParamResponseGetInfo) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamResponseGetInfo) Channel() crtp.Channel {
	return paramChannelTOC
}

func (p *ParamResponseGetInfo) LoadFromBytes(b []byte) error {
	if len(b) < 2 || b[1] != paramCommandGetInfo {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 8 {
		return crtp.ErrorPacketTooShort
	}

	p.Count = int(binary.LittleEndian.Uint16(b[2:4]))
	p.CRC = binary.LittleEndian.Uint32(b[4:8])
	return nil
}

// ---- PARAM REQUEST: GET ITEM ----
type ParamRequestReadMeta struct{ ID uint16 }

func (p *ParamRequestReadMeta) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamRequestReadMeta) Channel() crtp.Channel {
	return paramChannelTOC
}

func (p *ParamRequestReadMeta) Bytes() []byte {
	return binary.LittleEndian.AppendUint16([]byte{paramCommandGetItem}, p.ID)
}

// ---- PARAM RESPONSE: GET ITEM ----
type ParamResponseReadMeta struct {
	ID       uint16
	Datatype uint8
	ReadOnly bool
	Name     string
}

func (p *ParamResponseReadMeta) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamResponseReadMeta) Channel() crtp.Channel {
	return paramChannelTOC
}

func (p *ParamResponseReadMeta) LoadFromBytes(b []byte) error {
	if len(b) < 4 || b[1] != paramCommandGetItem || binary.LittleEndian.Uint16(b[2:4]) != p.ID {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 5 {
		return crtp.ErrorPacketTooShort
	}

	name, ok := splitName(b[5:])
	if !ok {
		return crtp.ErrorPacketTooShort
	}
	p.Datatype = b[4] & paramMetaTypeMask
	p.ReadOnly = b[4]&paramMetaReadOnly != 0
	p.Name = name
	return nil
}

// ---- PARAM REQUEST: READ VALUE ----
type ParamRequestReadValue struct {
	ID uint16
}

func (p *ParamRequestReadValue) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamRequestReadValue) Channel() crtp.Channel {
	return paramChannelRead
}

func (p *ParamRequestReadValue) Bytes() []byte {
	return binary.LittleEndian.AppendUint16(nil, p.ID)
}

// ---- PARAM RESPONSE: READ VALUE ----
type ParamResponseReadValue struct {
	ID   uint16
	Data []uint8
}

func (p *ParamResponseReadValue) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamResponseReadValue) Channel() crtp.Channel {
	return paramChannelRead
}

func (p *ParamResponseReadValue) LoadFromBytes(b []byte) error {
	if len(b) < 3 || binary.LittleEndian.Uint16(b[1:3]) != p.ID {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 4 {
		return crtp.ErrorPacketTooShort
	}
	if b[3] != 0 {
		return ErrorParamNotFound
	}

	p.Data = b[4:]
	return nil
}

// ---- PARAM REQUEST: WRITE VALUE ----
type ParamRequestWriteValue struct {
	ID   uint16
	Data []byte
}

func (p *ParamRequestWriteValue) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamRequestWriteValue) Channel() crtp.Channel {
	return paramChannelWrite
}

func (p *ParamRequestWriteValue) Bytes() []byte {
	return append(binary.LittleEndian.AppendUint16(nil, p.ID), p.Data...)
}

// ---- PARAM RESPONSE: WRITE VALUE ----
type ParamResponseWriteValue struct {
	ID uint16
}

func (p *ParamResponseWriteValue) Port() crtp.Port {
	return crtp.PortParam
}

func (p *ParamResponseWriteValue) Channel() crtp.Channel {
	return paramChannelWrite
}

func (p *ParamResponseWriteValue) LoadFromBytes(b []byte) error {
	if len(b) < 3 || binary.LittleEndian.Uint16(b[1:3]) != p.ID {
		return crtp.ErrorPacketIncorrectType
	}
	// value confirmation = b[3:]
	return nil
}
