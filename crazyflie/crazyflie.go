// Package crazyflie talks CRTP to one Crazyflie over a crtpdevice link:
// request/response awaiting, the log and param subsystems, the console and
// the setpoint commands.
package crazyflie

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/cache"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtpdevice"
)

const DEFAULT_RESPONSE_TIMEOUT = 500 * time.Millisecond

type CrazyflieStatus uint32

const (
	StatusDisconnected CrazyflieStatus = iota
	StatusConnected
	StatusNoResponse
)

var statusString = map[CrazyflieStatus]string{
	StatusDisconnected: "disconnected",
	StatusConnected:    "connected",
	StatusNoResponse:   "no response",
}

func (s CrazyflieStatus) String() string {
	return statusString[s]
}

type Crazyflie struct {
	address    uint64
	channel    uint8
	crtpDevice crtpdevice.CrtpDevice
	tocCache   *cache.Store
	status     atomic.Uint32

	// communication loop
	disconnect     chan struct{}
	disconnectOnce sync.Once
	firstResponse  chan struct{}
	firstOnce      sync.Once
	statusTimeout  *time.Timer
	waitGroup      sync.WaitGroup

	// callbacks for packet reception
	callbackLock      sync.Mutex
	responseCallbacks map[crtp.Port]*list.List

	// console printing
	accumulatedConsolePrint string

	// log variables
	logLock        sync.Mutex
	logCount       int
	logCRC         uint32
	logMaxPacket   uint8
	logMaxOps      uint8
	logNameToIndex map[string]logItem
	logIndexToName map[uint16]string
	logBlocks      map[uint8]*logBlock

	// parameters
	paramLock        sync.Mutex
	paramCount       int
	paramCRC         uint32
	paramNameToIndex map[string]paramItem
	paramIndexToName map[uint16]string
}

// Connect registers the Crazyflie at channel/address on the device and
// waits for its first response. tocCache may be nil.
func Connect(crtpDevice crtpdevice.CrtpDevice, channel uint8, address uint64, tocCache *cache.Store) (*Crazyflie, error) {
	cf := &Crazyflie{
		crtpDevice: crtpDevice,
		address:    address,
		channel:    channel,
		tocCache:   tocCache,
	}

	// initialize the structures required for communication and packet handling
	cf.communicationSystemInit()
	cf.consoleSystemInit()
	cf.logSystemInit()
	cf.paramSystemInit()

	cf.crtpDevice.ClientRegister(cf.channel, cf.address, cf.responseHandler)

	select {
	case <-cf.firstResponse:
		return cf, nil
	case <-time.After(DEFAULT_RESPONSE_TIMEOUT):
		cf.DisconnectImmediately()
		return nil, ErrorNoResponse
	}
}

func (cf *Crazyflie) Address() uint64 {
	return cf.address
}

func (cf *Crazyflie) Channel() uint8 {
	return cf.channel
}

func (cf *Crazyflie) Status() CrazyflieStatus {
	return CrazyflieStatus(cf.status.Load())
}

// DisconnectImmediately drops any queued packets and stops listening.
func (cf *Crazyflie) DisconnectImmediately() {
	cf.disconnectOnce.Do(func() {
		cf.crtpDevice.ClientRemove(cf.channel, cf.address)
		close(cf.disconnect)
		cf.waitGroup.Wait()
		cf.status.Store(uint32(StatusDisconnected))
	})
}

// DisconnectOnEmpty waits for the queued packets to go out first.
func (cf *Crazyflie) DisconnectOnEmpty() {
	cf.PacketQueueWaitForEmpty()
	cf.DisconnectImmediately()
}
