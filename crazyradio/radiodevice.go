package crazyradio

import (
	"context"
	"time"

	"github.com/google/gousb"
)

const (
	controlTimeout = 250 * time.Millisecond
	dataTimeout    = 50 * time.Millisecond
)

const vendorRequest = gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice

// RadioDevice is one opened Crazyradio dongle. It is not safe for
// concurrent use; Radio serialises access to it.
type RadioDevice struct {
	context *gousb.Context
	device  *gousb.Device
	config  *gousb.Config
	intf    *gousb.Interface
	dataOut *gousb.OutEndpoint
	dataIn  *gousb.InEndpoint

	channel    uint8
	address    uint64
	addressSet bool
}

// OpenRadio opens the index-th Crazyradio on the bus and programs the
// default link settings.
func OpenRadio(index int) (*RadioDevice, error) {
	usbContext := gousb.NewContext()

	devices, err := usbContext.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if index >= len(devices) {
		for _, d := range devices {
			d.Close()
		}
		usbContext.Close()
		if err != nil {
			return nil, err
		}
		return nil, ErrorDeviceNotFound
	}
	for i, d := range devices {
		if i != index {
			d.Close()
		}
	}

	radio, err := openRadio(usbContext, devices[index])
	if err != nil {
		usbContext.Close()
		return nil, err
	}
	return radio, nil
}

func openRadio(usbContext *gousb.Context, dev *gousb.Device) (*RadioDevice, error) {
	dev.ControlTimeout = controlTimeout
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		return nil, err
	}

	config, err := dev.Config(1)
	if err != nil {
		dev.Close()
		return nil, err
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		dev.Close()
		return nil, err
	}

	// open the endpoint for transfers out
	dOut, err := intf.OutEndpoint(1)
	if err != nil {
		intf.Close()
		config.Close()
		dev.Close()
		return nil, err
	}

	// open the endpoint for transfers in
	dIn, err := intf.InEndpoint(1)
	if err != nil {
		intf.Close()
		config.Close()
		dev.Close()
		return nil, err
	}

	radio := &RadioDevice{
		context: usbContext,
		device:  dev,
		config:  config,
		intf:    intf,
		dataOut: dOut,
		dataIn:  dIn,
	}

	// can initialize the default states!
	for _, set := range []func() error{
		func() error { return radio.SetDatarate(DefaultDatarate) },
		func() error { return radio.forceChannel(DefaultChannel) },
		func() error { return radio.SetAddress(DefaultAddress) },
		func() error { return radio.SetPower(RadioPower_0DBM) },
		func() error { return radio.SetArc(3) },
		func() error { return radio.SetArdBytes(32) },
	} {
		if err := set(); err != nil {
			radio.Close()
			return nil, err
		}
	}
	return radio, nil
}

func (radio *RadioDevice) Close() {
	radio.intf.Close()
	radio.config.Close()
	radio.device.Close()
	radio.context.Close()
}

func (radio *RadioDevice) control(command radioCommand, value uint16, data []byte) error {
	_, err := radio.device.Control(vendorRequest, uint8(command), value, 0, data)
	return err
}

func (radio *RadioDevice) SetChannel(channel uint8) error {
	if channel > 125 {
		return ErrorInvalidChannel
	}
	if radio.channel == channel {
		return nil
	}
	return radio.forceChannel(channel)
}

func (radio *RadioDevice) forceChannel(channel uint8) error {
	if err := radio.control(SET_RADIO_CHANNEL, uint16(channel), nil); err != nil {
		return err
	}
	radio.channel = channel
	return nil
}

func (radio *RadioDevice) SetDatarate(datarate Datarate) error {
	if datarate > RadioDatarate_2MPS {
		return ErrorInvalidDatarate
	}
	return radio.control(SET_DATA_RATE, uint16(datarate), nil)
}

func (radio *RadioDevice) SetPower(power Power) error {
	if power > RadioPower_0DBM {
		return ErrorInvalidPower
	}
	return radio.control(SET_RADIO_POWER, uint16(power), nil)
}

func (radio *RadioDevice) SetArc(arc uint8) error {
	if arc > 15 {
		return ErrorInvalidArc
	}
	return radio.control(SET_RADIO_ARC, uint16(arc), nil)
}

func (radio *RadioDevice) SetArdTime(delay uint8) error {
	// Auto Retransmit Delay:
	// 0x00 - Wait 250uS
	// 0x01 - Wait 500uS
	// ........
	// 0x0F - Wait 4000uS
	if delay > 0x0F {
		return ErrorInvalidArdTime
	}
	return radio.control(SET_RADIO_ARD, uint16(delay), nil)
}

func (radio *RadioDevice) SetArdBytes(nbytes uint8) error {
	if nbytes > 0x20 {
		return ErrorInvalidArdBytes
	}
	return radio.control(SET_RADIO_ARD, uint16(0x80|nbytes), nil)
}

func (radio *RadioDevice) SetAckEnable(enable bool) error {
	var value uint16
	if enable {
		value = 1
	}
	return radio.control(SET_ACK_ENABLE, value, nil)
}

func (radio *RadioDevice) SetAddress(address uint64) error {
	if address>>40 != 0 {
		return ErrorInvalidAddress
	}
	if radio.addressSet && radio.address == address {
		return nil
	}

	if err := radio.control(SET_RADIO_ADDRESS, 0, addressBytes(address)); err != nil {
		return err
	}
	radio.address = address
	radio.addressSet = true
	return nil
}

// addressBytes lays out the 40-bit address most significant byte first.
func addressBytes(address uint64) []byte {
	a := make([]byte, 5)
	for i := range a {
		a[4-i] = uint8(address >> (8 * i))
	}
	return a
}

func (radio *RadioDevice) SendPacket(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
	defer cancel()

	length, err := radio.dataOut.WriteContext(ctx, data)
	if err != nil {
		return err
	}
	if len(data) != length {
		return ErrorWriteLength
	}
	return nil
}

func (radio *RadioDevice) ReadResponse() (bool, []byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
	defer cancel()

	resp := make([]byte, 64)
	length, err := radio.dataIn.ReadContext(ctx, resp)
	if err != nil {
		return false, nil, err
	}
	ack, data := parseAck(resp[:length])
	return ack, data, nil
}

// parseAck splits the dongle's status byte from the ack payload.
//
// ACK structure:
// uint8_t resp : 1
// uint8_t power detector : 1
// uint8_t reserved : 2
// uint8_t retransmission count : 4
// uint8_t ackdata[0:32 bytes]
func parseAck(resp []byte) (bool, []byte) {
	if len(resp) == 0 {
		return false, nil
	}
	return resp[0]&0x01 != 0, resp[1:]
}
