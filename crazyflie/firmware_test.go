package crazyflie

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

type tocEntry struct {
	name     string // group.name
	datatype uint8
	readonly bool
	value    []byte
}

// fakeFirmware answers CRTP requests the way the Crazyflie firmware does.
type fakeFirmware struct {
	lock     sync.Mutex
	callback func([]byte)
	silent   bool
	crc      uint32
	logTOC   []tocEntry
	params   []tocEntry
	blocks   map[uint8][]uint16
	started  map[uint8]uint8
	sent     [][]byte
}

func newFakeFirmware() *fakeFirmware {
	return &fakeFirmware{
		crc: 0xDEADBEEF,
		logTOC: []tocEntry{
			{name: "range.front", datatype: 2},
			{name: "range.up", datatype: 2},
			{name: "stateEstimate.x", datatype: 7},
			{name: "stabilizer.roll", datatype: 8},
		},
		params: []tocEntry{
			{name: "deck.bcMultiranger", datatype: 0x8, readonly: true, value: []byte{1}},
			{name: "deck.bcFlow2", datatype: 0x8, readonly: true, value: []byte{0}},
			{name: "commander.enHighLevel", datatype: 0x8, value: []byte{0}},
			{name: "posCtlPid.xKp", datatype: 0x6, value: binary.LittleEndian.AppendUint32(nil, math.Float32bits(2))},
		},
		blocks:  make(map[uint8][]uint16),
		started: make(map[uint8]uint8),
	}
}

func (f *fakeFirmware) ClientRegister(channel uint8, address uint64, callback func([]byte)) {
	f.lock.Lock()
	f.callback = callback
	silent := f.silent
	f.lock.Unlock()
	if !silent {
		go callback([]byte{crtp.HeaderEmpty1})
	}
}

func (f *fakeFirmware) ClientRemove(channel uint8, address uint64) {}

func (f *fakeFirmware) ClientWaitUntilAllPacketsHaveBeenSent(channel uint8, address uint64) {}

func (f *fakeFirmware) PacketSend(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	packet := crtp.Encode(request)
	f.lock.Lock()
	f.sent = append(f.sent, packet)
	silent := f.silent
	f.lock.Unlock()
	if !silent {
		go f.respond(packet)
	}
	return nil
}

func (f *fakeFirmware) PacketSendPriority(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	return f.PacketSend(channel, address, request)
}

func (f *fakeFirmware) sentPackets() [][]byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([][]byte(nil), f.sent...)
}

// push delivers an unsolicited packet, as the radio would with an ack.
func (f *fakeFirmware) push(port crtp.Port, channel crtp.Channel, body ...byte) {
	f.lock.Lock()
	callback := f.callback
	f.lock.Unlock()
	callback(append([]byte{crtp.HeaderBytes(port, channel)}, body...))
}

func tocItem(command byte, id int, meta uint8, name string) []byte {
	b := binary.LittleEndian.AppendUint16([]byte{command}, uint16(id))
	b = append(b, meta)
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return append(append(append(b, name[:i]...), 0), append([]byte(name[i+1:]), 0)...)
		}
	}
	return b
}

func (f *fakeFirmware) respond(packet []byte) {
	header := crtp.Header(packet[0])
	body := packet[1:]

	f.lock.Lock()
	defer f.lock.Unlock()

	var reply []byte
	switch header.Port() {
	case crtp.PortLog:
		reply = f.respondLog(header.Channel(), body)
	case crtp.PortParam:
		reply = f.respondParam(header.Channel(), body)
	}
	if reply != nil {
		go f.callback(append([]byte{packet[0]}, reply...))
	}
}

func (f *fakeFirmware) respondLog(channel crtp.Channel, body []byte) []byte {
	switch channel {
	case logChannelTOC:
		switch body[0] {
		case logCommandGetInfo:
			b := binary.LittleEndian.AppendUint16([]byte{logCommandGetInfo}, uint16(len(f.logTOC)))
			return append(binary.LittleEndian.AppendUint32(b, f.crc), 26, 16)
		case logCommandGetItem:
			id := int(binary.LittleEndian.Uint16(body[1:3]))
			return tocItem(logCommandGetItem, id, f.logTOC[id].datatype, f.logTOC[id].name)
		}
	case logChannelControl:
		switch body[0] {
		case logControlCreateBlock:
			var ids []uint16
			for i := 2; i+2 < len(body); i += 3 {
				ids = append(ids, binary.LittleEndian.Uint16(body[i+1:i+3]))
			}
			if _, ok := f.blocks[body[1]]; ok {
				return []byte{body[0], body[1], 17}
			}
			f.blocks[body[1]] = ids
			return []byte{body[0], body[1], 0}
		case logControlStartBlock:
			if _, ok := f.blocks[body[1]]; !ok {
				return []byte{body[0], body[1], 2}
			}
			f.started[body[1]] = body[2]
			return []byte{body[0], body[1], 0}
		case logControlStopBlock:
			delete(f.started, body[1])
			return []byte{body[0], body[1], 0}
		case logControlDeleteBlock:
			delete(f.blocks, body[1])
			return []byte{body[0], body[1], 0}
		case logControlReset:
			f.blocks = make(map[uint8][]uint16)
			return []byte{body[0], 0, 0}
		}
	}
	return nil
}

func (f *fakeFirmware) respondParam(channel crtp.Channel, body []byte) []byte {
	switch channel {
	case paramChannelTOC:
		switch body[0] {
		case paramCommandGetInfo:
			b := binary.LittleEndian.AppendUint16([]byte{paramCommandGetInfo}, uint16(len(f.params)))
			return binary.LittleEndian.AppendUint32(b, f.crc)
		case paramCommandGetItem:
			id := int(binary.LittleEndian.Uint16(body[1:3]))
			meta := f.params[id].datatype
			if f.params[id].readonly {
				meta |= paramMetaReadOnly
			}
			return tocItem(paramCommandGetItem, id, meta, f.params[id].name)
		}
	case paramChannelRead:
		id := binary.LittleEndian.Uint16(body[0:2])
		return append(append(append([]byte(nil), body[0:2]...), 0), f.params[id].value...)
	case paramChannelWrite:
		id := binary.LittleEndian.Uint16(body[0:2])
		f.params[id].value = append([]byte(nil), body[2:]...)
		return append([]byte(nil), body...)
	}
	return nil
}
