package crazyusb

import (
	"context"
	"time"

	"github.com/google/gousb"
)

const (
	vendorID  = 0x0483
	productID = 0x5740
)

const (
	controlTimeout = 200 * time.Millisecond
	dataTimeout    = 20 * time.Millisecond
)

// vendor request switching the USB link between CRTP and the serial console
const requestCRTP = 0x01

type usbDevice struct {
	context *gousb.Context
	device  *gousb.Device
	config  *gousb.Config
	intf    *gousb.Interface
	dataOut *gousb.OutEndpoint
	dataIn  *gousb.InEndpoint
}

func openUsbDevice(index int) (*usbDevice, error) {
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
	dev := devices[index]

	closeAll := func(closers ...func() error) {
		for _, c := range closers {
			c()
		}
	}

	dev.ControlTimeout = controlTimeout
	if err := dev.SetAutoDetach(true); err != nil {
		closeAll(dev.Close, usbContext.Close)
		return nil, err
	}

	config, err := dev.Config(1)
	if err != nil {
		closeAll(dev.Close, usbContext.Close)
		return nil, err
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		closeAll(config.Close, dev.Close, usbContext.Close)
		return nil, err
	}

	dOut, err := intf.OutEndpoint(1)
	if err != nil {
		intf.Close()
		closeAll(config.Close, dev.Close, usbContext.Close)
		return nil, err
	}

	dIn, err := intf.InEndpoint(1)
	if err != nil {
		intf.Close()
		closeAll(config.Close, dev.Close, usbContext.Close)
		return nil, err
	}

	crtpUsb := &usbDevice{
		context: usbContext,
		device:  dev,
		config:  config,
		intf:    intf,
		dataOut: dOut,
		dataIn:  dIn,
	}

	// toggle so a link left in CRTP mode by a crashed process starts clean
	if err := crtpUsb.setCRTP(false); err != nil {
		crtpUsb.Close()
		return nil, err
	}
	if err := crtpUsb.setCRTP(true); err != nil {
		crtpUsb.Close()
		return nil, err
	}
	return crtpUsb, nil
}

func (crtpUsb *usbDevice) setCRTP(enable bool) error {
	value := uint16(0)
	if enable {
		value = 1
	}
	_, err := crtpUsb.device.Control(gousb.ControlOut|gousb.ControlVendor|gousb.ControlDevice, requestCRTP, requestCRTP, value, nil)
	return err
}

func (crtpUsb *usbDevice) Close() {
	crtpUsb.setCRTP(false)
	crtpUsb.intf.Close()
	crtpUsb.config.Close()
	crtpUsb.device.Close()
	crtpUsb.context.Close()
}

func (crtpUsb *usbDevice) SendPacket(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
	defer cancel()

	length, err := crtpUsb.dataOut.WriteContext(ctx, data)
	if err != nil {
		return err
	}
	if len(data) != length {
		return ErrorWriteLength
	}
	return nil
}

// ReadResponse returns the next packet from the Crazyflie, or nil when it
// had nothing to send within the read timeout.
func (crtpUsb *usbDevice) ReadResponse() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
	defer cancel()

	resp := make([]byte, 64)
	length, err := crtpUsb.dataIn.ReadContext(ctx, resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, err
	}
	return resp[:length], nil
}
