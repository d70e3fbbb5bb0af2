package crazyradio

// Transmission datarate enum
type Datarate uint16

const (
	RadioDatarate_250KPS Datarate = iota
	RadioDatarate_1MPS
	RadioDatarate_2MPS
)

var datarateString = map[Datarate]string{
	RadioDatarate_250KPS: "250K",
	RadioDatarate_1MPS:   "1M",
	RadioDatarate_2MPS:   "2M",
}

func (d Datarate) String() string {
	return datarateString[d]
}

// Transmission power enum
type Power uint16

const (
	RadioPower_M18DBM Power = iota
	RadioPower_M12DBM
	RadioPower_M6DBM
	RadioPower_0DBM
)

// Radio commands enum
type radioCommand uint8

const (
	SET_RADIO_CHANNEL radioCommand = 0x01
	SET_RADIO_ADDRESS radioCommand = 0x02
	SET_DATA_RATE     radioCommand = 0x03
	SET_RADIO_POWER   radioCommand = 0x04
	SET_RADIO_ARD     radioCommand = 0x05
	SET_RADIO_ARC     radioCommand = 0x06
	SET_ACK_ENABLE    radioCommand = 0x10
	SET_CONT_CARRIER  radioCommand = 0x20
	SCANN_CHANNELS    radioCommand = 0x21
	LAUNCH_BOOTLOADER radioCommand = 0xFF
)

// USB identity of the Crazyradio PA dongle.
const (
	vendorID  = 0x1915
	productID = 0x7777
)

const (
	DefaultChannel  uint8  = 80
	DefaultAddress  uint64 = 0xE7E7E7E7E7
	DefaultDatarate        = RadioDatarate_2MPS
)
