package crtpdevice

import (
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

// CrtpDevice is a link able to carry CRTP packets to one or more Crazyflies,
// each identified by its radio channel and address.
type CrtpDevice interface {
	ClientRegister(channel uint8, address uint64, responseCallback func([]byte))
	ClientRemove(channel uint8, address uint64)
	ClientWaitUntilAllPacketsHaveBeenSent(channel uint8, address uint64)

	PacketSend(channel uint8, address uint64, request crtp.RequestPacketPtr) error
	PacketSendPriority(channel uint8, address uint64, request crtp.RequestPacketPtr) error
}
