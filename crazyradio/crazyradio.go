// Package crazyradio drives a Crazyradio USB dongle and multiplexes CRTP
// traffic for any number of Crazyflies over it.
package crazyradio

import (
	"log"
	"sync"
	"time"
)

// transceiver is the part of a RadioDevice the radio thread needs.
type transceiver interface {
	SetChannel(channel uint8) error
	SetAddress(address uint64) error
	SendPacket(data []byte) error
	ReadResponse() (bool, []byte, error)
	Close()
}

// Consecutive unacknowledged packets after which a client is reported lost.
const lostAfter = 100

var pingPacket = []byte{0xFF}

// Radio owns one dongle and a thread that round-robins over the registered
// clients: a priority packet if one is queued, else a standard packet,
// else a ping so the Crazyflie can piggyback data on the ack.
type Radio struct {
	device transceiver

	lock         sync.RWMutex
	callbacks    map[uint8]map[uint64]func([]byte)
	packetQueues map[uint8]map[uint64]*packetQueue

	radioThreadShouldStop chan struct{}
	waitGroup             sync.WaitGroup
	closeOnce             sync.Once
}

// Open opens the dongle named by link and starts the radio thread.
func Open(link Link) (*Radio, error) {
	device, err := OpenRadio(link.Index)
	if err != nil {
		return nil, err
	}
	if err := device.SetDatarate(link.Datarate); err != nil {
		device.Close()
		return nil, err
	}
	return start(device), nil
}

func start(device transceiver) *Radio {
	cr := &Radio{
		device:                device,
		callbacks:             make(map[uint8]map[uint64]func([]byte)),
		packetQueues:          make(map[uint8]map[uint64]*packetQueue),
		radioThreadShouldStop: make(chan struct{}),
	}

	cr.waitGroup.Add(1)
	go cr.radioThread()
	return cr
}

// Close stops the radio thread and releases the dongle.
func (cr *Radio) Close() {
	cr.closeOnce.Do(func() {
		close(cr.radioThreadShouldStop)
		cr.waitGroup.Wait()

		cr.lock.Lock()
		for channel, queues := range cr.packetQueues {
			for address := range queues {
				cr.clientPacketQueueRemove(channel, address)
			}
		}
		cr.lock.Unlock()

		cr.device.Close()
	})
}

type client struct {
	channel  uint8
	address  uint64
	queue    *packetQueue
	callback func([]byte)
}

func (cr *Radio) clients() []client {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	var clients []client
	for channel, channelQueues := range cr.packetQueues {
		for address, queue := range channelQueues {
			clients = append(clients, client{channel, address, queue, cr.callbacks[channel][address]})
		}
	}
	return clients
}

func (cr *Radio) shouldStop() bool {
	select {
	case <-cr.radioThreadShouldStop:
		return true
	default:
		return false
	}
}

func (cr *Radio) radioThread() {
	defer cr.waitGroup.Done()

	for !cr.shouldStop() {
		clients := cr.clients()
		if len(clients) == 0 {
			select {
			case <-cr.radioThreadShouldStop:
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		for _, c := range clients {
			if cr.shouldStop() {
				return
			}
			cr.transact(c)
		}
	}
}

// transact sends the next packet for one client and hands the ack payload
// to its callback. Unacknowledged packets stay queued and are retried.
func (cr *Radio) transact(c client) {
	pending, packet := c.queue.next()
	if packet == nil {
		packet = pingPacket
	}

	if err := cr.device.SetChannel(c.channel); err != nil {
		log.Printf("%d/%X error: %s", c.channel, c.address, err)
		return
	}
	if err := cr.device.SetAddress(c.address); err != nil {
		log.Printf("%d/%X error: %s", c.channel, c.address, err)
		return
	}
	if err := cr.device.SendPacket(packet); err != nil {
		log.Printf("%d/%X error: %s", c.channel, c.address, err)
		return
	}

	ackReceived, resp, err := cr.device.ReadResponse()
	if err != nil || !ackReceived {
		if c.queue.failed() == lostAfter {
			log.Printf("%d/%X lost: no acknowledgement for %d packets", c.channel, c.address, lostAfter)
		}
		return
	}
	c.queue.acknowledged(pending)

	// resp has len 0 if the packet was acked with no data
	if c.callback != nil {
		c.callback(resp)
	}
}
