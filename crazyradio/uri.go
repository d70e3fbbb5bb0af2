package crazyradio

import (
	"fmt"
	"strconv"
	"strings"
)

const DefaultURI = "radio://0/80/2M/E7E7E7E7E7"

const uriScheme = "radio://"

// Link identifies a Crazyflie as seen through one radio dongle.
type Link struct {
	Index    int
	Channel  uint8
	Datarate Datarate
	Address  uint64
}

// ParseURI reads radio://<index>/<channel>/<datarate>[/<address>]. The
// address is hex and defaults to E7E7E7E7E7.
func ParseURI(uri string) (Link, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return Link{}, ErrorInvalidURI
	}
	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	if len(parts) < 3 || len(parts) > 4 {
		return Link{}, ErrorInvalidURI
	}

	link := Link{Address: DefaultAddress}

	index, err := strconv.Atoi(parts[0])
	if err != nil || index < 0 {
		return Link{}, ErrorInvalidURI
	}
	link.Index = index

	channel, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || channel > 125 {
		return Link{}, ErrorInvalidChannel
	}
	link.Channel = uint8(channel)

	found := false
	for datarate, name := range datarateString {
		if strings.EqualFold(parts[2], name) {
			link.Datarate, found = datarate, true
		}
	}
	if !found {
		return Link{}, ErrorInvalidDatarate
	}

	if len(parts) == 4 {
		address, err := strconv.ParseUint(parts[3], 16, 40)
		if err != nil {
			return Link{}, ErrorInvalidAddress
		}
		link.Address = address
	}
	return link, nil
}

func (l Link) String() string {
	return fmt.Sprintf("%s%d/%d/%s/%010X", uriScheme, l.Index, l.Channel, l.Datarate, l.Address)
}
