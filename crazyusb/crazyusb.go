// Package crazyusb carries CRTP to a single Crazyflie plugged in over USB.
package crazyusb

import (
	"log"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
)

// transport is the part of a usbDevice the worker threads need.
type transport interface {
	SendPacket(data []byte) error
	ReadResponse() ([]byte, error)
	Close()
}

// USB needs no pings: queued packets are written as soon as the worker
// sees them and the reader keeps polling for incoming ones.
const workerInterval = 2 * time.Millisecond

type CrtpUsb struct {
	device transport

	standardQueue  *queue.Queue
	priorityQueue  *queue.Queue
	packetDequeued chan struct{}

	callbackLock sync.Mutex
	callback     func([]byte)

	threadShouldStop chan struct{}
	waitGroup        sync.WaitGroup
	closeOnce        sync.Once
}

// Open opens the index-th Crazyflie on the bus in CRTP mode.
func Open(index int) (*CrtpUsb, error) {
	dev, err := openUsbDevice(index)
	if err != nil {
		return nil, err
	}
	return start(dev), nil
}

func newCrtpUsb(device transport) *CrtpUsb {
	return &CrtpUsb{
		device:           device,
		standardQueue:    queue.New(10),
		priorityQueue:    queue.New(10),
		packetDequeued:   make(chan struct{}, 1),
		threadShouldStop: make(chan struct{}),
	}
}

func start(device transport) *CrtpUsb {
	cr := newCrtpUsb(device)
	cr.waitGroup.Add(2)
	go cr.workerThread()
	go cr.readerThread()
	return cr
}

func (cr *CrtpUsb) Close() {
	cr.closeOnce.Do(func() {
		close(cr.threadShouldStop)
		cr.waitGroup.Wait()
		cr.priorityQueue.Dispose()
		cr.standardQueue.Dispose()
		cr.device.Close()
	})
}

func (cr *CrtpUsb) shouldStop() bool {
	select {
	case <-cr.threadShouldStop:
		return true
	default:
		return false
	}
}

// readerThread hands every incoming packet to the client. A read that
// times out is passed on as an empty packet so the client sees the link
// is alive.
func (cr *CrtpUsb) readerThread() {
	defer cr.waitGroup.Done()

	for !cr.shouldStop() {
		resp, err := cr.device.ReadResponse()
		if err != nil {
			log.Printf("usb read error: %s", err)
			time.Sleep(workerInterval)
			continue
		}

		cr.callbackLock.Lock()
		callback := cr.callback
		cr.callbackLock.Unlock()
		if callback != nil {
			callback(resp)
		}
	}
}

func (cr *CrtpUsb) workerThread() {
	defer cr.waitGroup.Done()

	ticker := time.NewTicker(workerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cr.threadShouldStop:
			return
		case <-ticker.C:
		}

		for cr.sendNext() {
			if cr.shouldStop() {
				return
			}
		}
	}
}

// sendNext writes the front packet, priority first, and reports whether
// there was one. A packet that fails to send stays queued.
func (cr *CrtpUsb) sendNext() bool {
	var currentQueue *queue.Queue
	var packet []byte

	if frontPacket, err := cr.priorityQueue.Peek(); err == nil {
		currentQueue = cr.priorityQueue
		packet = frontPacket.([]byte)
	} else if frontPacket, err := cr.standardQueue.Peek(); err == nil {
		currentQueue = cr.standardQueue
		packet = frontPacket.([]byte)
	} else {
		return false
	}

	if err := cr.device.SendPacket(packet); err != nil {
		log.Printf("usb send error: %s", err)
		return false
	}
	currentQueue.Get(1)

	select {
	case cr.packetDequeued <- struct{}{}:
	default:
	}
	return true
}
