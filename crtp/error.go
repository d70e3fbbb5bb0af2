package crtp

import "fmt"

type crtpError uint8

func (e crtpError) Error() string {
	return fmt.Sprintf("crtp: %s", crtpErrorString[e])
}

const (
	ErrorPacketIncorrectType crtpError = iota
	ErrorPacketTooShort
	ErrorPayloadTooLong
)

var crtpErrorString = map[crtpError]string{
	ErrorPacketIncorrectType: "cannot decode packet from bytes: incorrect format",
	ErrorPacketTooShort:      "cannot decode packet from bytes: too short",
	ErrorPayloadTooLong:      "payload exceeds the maximum packet size",
}
