package crazyradio

import (
	"sync"
	"testing"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransceiver struct {
	lock    sync.Mutex
	sent    [][]byte
	last    []byte
	drop    int // acks to withhold before acknowledging
	reply   []byte
	address uint64
	closed  bool
}

func (f *fakeTransceiver) SetChannel(uint8) error { return nil }

func (f *fakeTransceiver) SetAddress(address uint64) error {
	f.lock.Lock()
	f.address = address
	f.lock.Unlock()
	return nil
}

func (f *fakeTransceiver) SendPacket(data []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.last = append([]byte(nil), data...)
	if data[0] != pingPacket[0] {
		f.sent = append(f.sent, f.last)
	}
	time.Sleep(time.Millisecond)
	return nil
}

func (f *fakeTransceiver) ReadResponse() (bool, []byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.drop > 0 && f.last[0] != pingPacket[0] {
		f.drop--
		return false, nil, nil
	}
	return true, f.reply, nil
}

func (f *fakeTransceiver) Close() {
	f.lock.Lock()
	f.closed = true
	f.lock.Unlock()
}

func (f *fakeTransceiver) sentPackets() [][]byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([][]byte(nil), f.sent...)
}

type rawRequest struct {
	port crtp.Port
	body []byte
}

func (r rawRequest) Port() crtp.Port       { return r.port }
func (r rawRequest) Channel() crtp.Channel { return 0 }
func (r rawRequest) Bytes() []byte         { return r.body }

func TestPacketsAreSentInOrder(t *testing.T) {
	f := &fakeTransceiver{drop: 2}
	cr := start(f)
	defer cr.Close()

	cr.ClientRegister(80, 0xE7E7E7E7E7, nil)
	require.NoError(t, cr.PacketSend(80, 0xE7E7E7E7E7, rawRequest{crtp.PortLog, []byte{1}}))
	require.NoError(t, cr.PacketSend(80, 0xE7E7E7E7E7, rawRequest{crtp.PortLog, []byte{2}}))

	cr.ClientWaitUntilAllPacketsHaveBeenSent(80, 0xE7E7E7E7E7)

	header := crtp.HeaderBytes(crtp.PortLog, 0)
	sent := f.sentPackets()
	require.GreaterOrEqual(t, len(sent), 2)
	// the first packet is retried until acknowledged
	assert.Equal(t, []byte{header, 1}, sent[0])
	assert.Equal(t, []byte{header, 2}, sent[len(sent)-1])
	for _, p := range sent[:len(sent)-1] {
		assert.Equal(t, []byte{header, 1}, p)
	}
	f.lock.Lock()
	assert.Equal(t, uint64(0xE7E7E7E7E7), f.address)
	f.lock.Unlock()
}

func TestPriorityQueueFirst(t *testing.T) {
	cr := &Radio{
		callbacks:    make(map[uint8]map[uint64]func([]byte)),
		packetQueues: make(map[uint8]map[uint64]*packetQueue),
	}
	cr.ClientRegister(1, 2, nil)
	require.NoError(t, cr.PacketSend(1, 2, rawRequest{crtp.PortParam, []byte{1}}))
	require.NoError(t, cr.PacketSendPriority(1, 2, rawRequest{crtp.PortGenericSetpoint, []byte{9}}))

	pq, ok := cr.clientPacketQueue(1, 2)
	require.True(t, ok)
	from, packet := pq.next()
	assert.Same(t, pq.priorityQueue, from)
	assert.Equal(t, []byte{crtp.HeaderBytes(crtp.PortGenericSetpoint, 0), 9}, packet)
}

func TestAckPayloadReachesCallback(t *testing.T) {
	reply := []byte{crtp.HeaderBytes(crtp.PortConsole, 0), 'h', 'i'}
	f := &fakeTransceiver{reply: reply}
	cr := start(f)
	defer cr.Close()

	got := make(chan []byte, 1)
	cr.ClientRegister(80, 1, func(resp []byte) {
		select {
		case got <- resp:
		default:
		}
	})

	select {
	case resp := <-got:
		assert.Equal(t, reply, resp)
	case <-time.After(time.Second):
		t.Fatal("no callback")
	}
}

func TestSendToUnknownClient(t *testing.T) {
	cr := start(&fakeTransceiver{})
	defer cr.Close()
	assert.Equal(t, ErrorClosed, cr.PacketSend(1, 1, rawRequest{crtp.PortLog, nil}))
}

func TestPayloadTooLong(t *testing.T) {
	cr := start(&fakeTransceiver{})
	defer cr.Close()
	cr.ClientRegister(1, 1, nil)
	err := cr.PacketSend(1, 1, rawRequest{crtp.PortLog, make([]byte, crtp.MaxPayload+1)})
	assert.Equal(t, crtp.ErrorPayloadTooLong, err)
}

func TestCloseReleasesDevice(t *testing.T) {
	f := &fakeTransceiver{}
	cr := start(f)
	cr.ClientRegister(1, 1, nil)
	cr.Close()
	cr.Close()

	assert.True(t, f.closed)
	cr.ClientWaitUntilAllPacketsHaveBeenSent(1, 1)
}

func TestAddressBytes(t *testing.T) {
	assert.Equal(t, []byte{0xE7, 0xE7, 0xE7, 0xE7, 0x01}, addressBytes(0xE7E7E7E701))
}

func TestParseAck(t *testing.T) {
	ack, data := parseAck([]byte{0x01, 0xF3})
	assert.True(t, ack)
	assert.Equal(t, []byte{0xF3}, data)

	ack, _ = parseAck([]byte{0x10})
	assert.False(t, ack)

	ack, data = parseAck(nil)
	assert.False(t, ack)
	assert.Nil(t, data)
}
