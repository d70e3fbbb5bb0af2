package crazyradio

// Functions implementing the CrtpDevice interface

import (
	"log"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

func (cr *Radio) ClientRegister(channel uint8, address uint64, callback func([]byte)) {
	cr.lock.Lock()
	cr.clientCallbackSet(channel, address, callback)
	cr.clientPacketQueueGet(channel, address) // initializes if non existent
	cr.lock.Unlock()
	log.Printf("New client %d:0x%X", channel, address)
}

func (cr *Radio) ClientRemove(channel uint8, address uint64) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	cr.clientCallbackRemove(channel, address)
	cr.clientPacketQueueRemove(channel, address)
}

func (cr *Radio) ClientWaitUntilAllPacketsHaveBeenSent(channel uint8, address uint64) {
	if pq, ok := cr.clientPacketQueue(channel, address); ok {
		pq.waitUntilEmpty()
	}
}

func (cr *Radio) PacketSend(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	pq, ok := cr.clientPacketQueue(channel, address)
	if !ok {
		return ErrorClosed
	}
	return clientPacketEnqueue(pq.standardQueue, request)
}

func (cr *Radio) PacketSendPriority(channel uint8, address uint64, request crtp.RequestPacketPtr) error {
	pq, ok := cr.clientPacketQueue(channel, address)
	if !ok {
		return ErrorClosed
	}
	return clientPacketEnqueue(pq.priorityQueue, request)
}
