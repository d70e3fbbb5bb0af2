package crtp

const (
	PortConsole         Port = 0x00
	PortParam           Port = 0x02
	PortCommander       Port = 0x03
	PortMem             Port = 0x04
	PortLog             Port = 0x05
	PortLocalization    Port = 0x06
	PortGenericSetpoint Port = 0x07
	PortPlatform        Port = 0x0D
	PortLink            Port = 0x0F
)

// A null ack from the firmware carries one of these header bytes.
const (
	HeaderEmpty1 byte = 0xF3
	HeaderEmpty2 byte = 0xF7
	HeaderPing   byte = 0xFF
)

// Largest CRTP payload, excluding the header byte.
const MaxPayload = 30

type Header byte
type Port byte
type Channel byte

func HeaderBytes(port Port, channel Channel) byte {
	var link byte = 3
	return ((byte(port) & 0x0F) << 4) |
		((link & 0x03) << 2) |
		((byte(channel) & 0x03) << 0)
}

func (header Header) Channel() Channel {
	return Channel((byte(header) >> 0) & 0x03)
}

func (header Header) Port() Port {
	return Port((byte(header) >> 4) & 0x0F)
}

// IsNull reports whether the header belongs to an empty acknowledgement.
func (header Header) IsNull() bool {
	return byte(header) == HeaderEmpty1 || byte(header) == HeaderEmpty2
}

// Encode prepends the CRTP header to the request body.
func Encode(request RequestPacketPtr) []byte {
	body := request.Bytes()
	data := make([]byte, len(body)+1)
	data[0] = HeaderBytes(request.Port(), request.Channel())
	copy(data[1:], body)
	return data
}

// Matches reports whether a raw packet is addressed to the response's port and channel.
func Matches(response ResponsePacketPtr, data []byte) bool {
	if len(data) < 1 {
		return false
	}
	header := Header(data[0])
	return header.Port() == response.Port() && header.Channel() == response.Channel()
}
