package crazyusb

// Functions implementing the CrtpDevice interface. A USB link has a single
// Crazyflie on it, so channel and address are ignored.

import (
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
	"github.com/Workiva/go-datastructures/queue"
)

func (cr *CrtpUsb) ClientRegister(channel uint8, address uint64, callback func([]byte)) {
	cr.callbackLock.Lock()
	cr.callback = callback
	cr.callbackLock.Unlock()
}

func (cr *CrtpUsb) ClientRemove(channel uint8, address uint64) {
	cr.callbackLock.Lock()
	cr.callback = nil
	cr.callbackLock.Unlock()
}

func (cr *CrtpUsb) ClientWaitUntilAllPacketsHaveBeenSent(channel uint8, address uint64) {
	for !cr.priorityQueue.Empty() || !cr.standardQueue.Empty() {
		if cr.standardQueue.Disposed() {
			return
		}
		select {
		case <-cr.packetDequeued:
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (cr *CrtpUsb) PacketSend(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	return packetEnqueue(cr.standardQueue, request)
}

func (cr *CrtpUsb) PacketSendPriority(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	return packetEnqueue(cr.priorityQueue, request)
}

func packetEnqueue(q *queue.Queue, request crtp.RequestPacketPtr) error {
	if len(request.Bytes()) > crtp.MaxPayload {
		return crtp.ErrorPayloadTooLong
	}
	if err := q.Put(crtp.Encode(request)); err != nil {
		return ErrorClosed
	}
	return nil
}
