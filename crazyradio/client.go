package crazyradio

import (
	"sync"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
	"github.com/Workiva/go-datastructures/queue"
)

type packetQueue struct {
	standardQueue  *queue.Queue
	priorityQueue  *queue.Queue
	packetDequeued chan struct{}

	lock     sync.Mutex
	failures int
}

func newPacketQueue() *packetQueue {
	return &packetQueue{
		standardQueue:  queue.New(10),
		priorityQueue:  queue.New(10),
		packetDequeued: make(chan struct{}, 1),
	}
}

// next peeks at the packet to transmit, priority first. The returned queue
// is the one to dequeue from once the packet is acknowledged.
func (pq *packetQueue) next() (*queue.Queue, []byte) {
	for _, q := range []*queue.Queue{pq.priorityQueue, pq.standardQueue} {
		if item, err := q.Peek(); err == nil {
			return q, item.([]byte)
		}
	}
	return nil, nil
}

func (pq *packetQueue) acknowledged(from *queue.Queue) {
	pq.lock.Lock()
	pq.failures = 0
	pq.lock.Unlock()

	if from == nil {
		return
	}
	from.Get(1)

	select { // wake a waiter, unless one is already pending
	case pq.packetDequeued <- struct{}{}:
	default:
	}
}

func (pq *packetQueue) failed() int {
	pq.lock.Lock()
	defer pq.lock.Unlock()
	pq.failures++
	return pq.failures
}

func (pq *packetQueue) empty() bool {
	return pq.priorityQueue.Empty() && pq.standardQueue.Empty()
}

func (pq *packetQueue) waitUntilEmpty() {
	for !pq.empty() && !pq.standardQueue.Disposed() {
		select {
		case <-pq.packetDequeued:
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (pq *packetQueue) dispose() {
	pq.priorityQueue.Dispose()
	pq.standardQueue.Dispose()
}

func (cr *Radio) clientCallbackSet(channel uint8, address uint64, callback func([]byte)) {
	if _, ok := cr.callbacks[channel]; !ok {
		cr.callbacks[channel] = make(map[uint64]func([]byte))
	}
	cr.callbacks[channel][address] = callback
}

func (cr *Radio) clientCallbackRemove(channel uint8, address uint64) {
	delete(cr.callbacks[channel], address)
	if len(cr.callbacks[channel]) == 0 {
		delete(cr.callbacks, channel)
	}
}

// clientPacketQueueGet must be called with cr.lock held for writing.
func (cr *Radio) clientPacketQueueGet(channel uint8, address uint64) *packetQueue {
	if _, ok := cr.packetQueues[channel]; !ok {
		cr.packetQueues[channel] = make(map[uint64]*packetQueue)
	}

	channelQueues := cr.packetQueues[channel]

	if _, ok := channelQueues[address]; !ok {
		channelQueues[address] = newPacketQueue()
	}

	return channelQueues[address]
}

func (cr *Radio) clientPacketQueue(channel uint8, address uint64) (*packetQueue, bool) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	pq, ok := cr.packetQueues[channel][address]
	return pq, ok
}

func (cr *Radio) clientPacketQueueRemove(channel uint8, address uint64) {
	if pq, ok := cr.packetQueues[channel][address]; ok {
		pq.dispose()
	}
	delete(cr.packetQueues[channel], address)
	if len(cr.packetQueues[channel]) == 0 {
		delete(cr.packetQueues, channel)
	}
}

func clientPacketEnqueue(q *queue.Queue, request crtp.RequestPacketPtr) error {
	if len(request.Bytes()) > crtp.MaxPayload {
		return crtp.ErrorPayloadTooLong
	}
	if err := q.Put(crtp.Encode(request)); err != nil {
		return ErrorClosed
	}
	return nil
}
