package crazyusb

import "fmt"

type usbError uint8

func (e usbError) Error() string {
	return fmt.Sprintf("crazyusb: %s", usbErrorString[e])
}

const (
	ErrorDeviceNotFound usbError = iota
	ErrorInvalidURI
	ErrorWriteLength
	ErrorClosed
)

var usbErrorString = map[usbError]string{
	ErrorDeviceNotFound: "device not found",
	ErrorInvalidURI:     "invalid usb URI",
	ErrorWriteLength:    "incorrect number of bytes written to endpoint",
	ErrorClosed:         "link closed",
}
