package crtp

// RequestPacketPtr is a packet we send to the Crazyflie.
type RequestPacketPtr interface {
	Port() Port
	Channel() Channel
	Bytes() []byte
}

// ResponsePacketPtr is a packet we expect back. LoadFromBytes receives the
// whole packet, header included, and only after the header matched.
type ResponsePacketPtr interface {
	Port() Port
	Channel() Channel
	LoadFromBytes([]byte) error
}
