package crazyflie

import (
	"container/list"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

const statusTimeoutDuration time.Duration = 1 * time.Second

func (cf *Crazyflie) communicationSystemInit() {
	cf.disconnect = make(chan struct{})
	cf.firstResponse = make(chan struct{})
	cf.statusTimeout = time.NewTimer(statusTimeoutDuration)
	cf.responseCallbacks = make(map[crtp.Port]*list.List)

	cf.waitGroup.Add(1)
	go cf.statusTimeoutThread()
}

func (cf *Crazyflie) statusTimeoutThread() {
	defer cf.waitGroup.Done()
	defer cf.statusTimeout.Stop()

	for {
		select {
		case <-cf.disconnect:
			return
		case <-cf.statusTimeout.C:
			cf.status.Store(uint32(StatusNoResponse))
			cf.statusTimeout.Reset(statusTimeoutDuration)
		}
	}
}

// callbackAdd registers f for every packet arriving on port and returns a
// function removing it again.
func (cf *Crazyflie) callbackAdd(port crtp.Port, f func([]byte)) func() {
	cf.callbackLock.Lock()
	defer cf.callbackLock.Unlock()

	callbacks, ok := cf.responseCallbacks[port]
	if !ok {
		callbacks = list.New()
		cf.responseCallbacks[port] = callbacks
	}
	e := callbacks.PushBack(f)

	return func() {
		cf.callbackLock.Lock()
		callbacks.Remove(e)
		cf.callbackLock.Unlock()
	}
}

func (cf *Crazyflie) connected() bool {
	select {
	case <-cf.disconnect:
		return false
	default:
		return true
	}
}

func (cf *Crazyflie) PacketSend(request crtp.RequestPacketPtr) error {
	if !cf.connected() {
		return ErrorDisconnected
	}
	return cf.crtpDevice.PacketSend(cf.channel, cf.address, request)
}

func (cf *Crazyflie) PacketSendPriority(request crtp.RequestPacketPtr) error {
	if !cf.connected() {
		return ErrorDisconnected
	}
	return cf.crtpDevice.PacketSendPriority(cf.channel, cf.address, request)
}

// PacketStartAwaiting begins listening for response. The returned channel
// yields the result of the first matching LoadFromBytes; packets the
// response rejects as the wrong type are skipped. Call stop when done.
func (cf *Crazyflie) PacketStartAwaiting(response crtp.ResponsePacketPtr) (<-chan error, func()) {
	result := make(chan error, 1)
	done := false

	stop := cf.callbackAdd(response.Port(), func(resp []byte) {
		if done || !crtp.Matches(response, resp) {
			return
		}
		err := response.LoadFromBytes(resp)
		if err == crtp.ErrorPacketIncorrectType || err == crtp.ErrorPacketTooShort {
			return
		}
		done = true
		result <- err
	})
	return result, stop
}

func (cf *Crazyflie) packetCustomSendAndAwaitResponse(request crtp.RequestPacketPtr, response crtp.ResponsePacketPtr, timeout time.Duration, send func(crtp.RequestPacketPtr) error) error {
	result, stop := cf.PacketStartAwaiting(response)
	defer stop()

	if err := send(request); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-cf.disconnect:
		return ErrorDisconnected
	case <-time.After(timeout):
		return ErrorNoResponse
	}
}

func (cf *Crazyflie) PacketSendAndAwaitResponse(request crtp.RequestPacketPtr, response crtp.ResponsePacketPtr, timeout time.Duration) error {
	return cf.packetCustomSendAndAwaitResponse(request, response, timeout, cf.PacketSend)
}

func (cf *Crazyflie) PacketSendPriorityAndAwaitResponse(request crtp.RequestPacketPtr, response crtp.ResponsePacketPtr, timeout time.Duration) error {
	return cf.packetCustomSendAndAwaitResponse(request, response, timeout, cf.PacketSendPriority)
}

// packetSendAndAwaitRetry retries a request that went unanswered.
func (cf *Crazyflie) packetSendAndAwaitRetry(request crtp.RequestPacketPtr, response crtp.ResponsePacketPtr, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT)
		if err != ErrorNoResponse {
			return err
		}
	}
	return err
}

// Waits for the packet queues to be empty
func (cf *Crazyflie) PacketQueueWaitForEmpty() {
	cf.crtpDevice.ClientWaitUntilAllPacketsHaveBeenSent(cf.channel, cf.address)
}

// responseHandler runs on the device's thread for every acknowledgement.
func (cf *Crazyflie) responseHandler(resp []byte) {
	cf.status.Store(uint32(StatusConnected))
	cf.statusTimeout.Reset(statusTimeoutDuration)
	cf.firstOnce.Do(func() { close(cf.firstResponse) })

	if len(resp) == 0 || crtp.Header(resp[0]).IsNull() {
		return // CF has nothing to report
	}

	packet := make([]byte, len(resp))
	copy(packet, resp)

	cf.callbackLock.Lock()
	defer cf.callbackLock.Unlock()

	callbacks, ok := cf.responseCallbacks[crtp.Header(packet[0]).Port()]
	if !ok {
		return
	}
	for e := callbacks.Front(); e != nil; e = e.Next() {
		e.Value.(func([]byte))(packet)
	}
}
