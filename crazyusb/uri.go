package crazyusb

import (
	"strconv"
	"strings"
)

const uriScheme = "usb://"

// IsURI reports whether uri names a Crazyflie plugged in over USB.
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, uriScheme)
}

// ParseURI reads usb://<index> and returns the index.
func ParseURI(uri string) (int, error) {
	if !IsURI(uri) {
		return 0, ErrorInvalidURI
	}
	index, err := strconv.Atoi(strings.TrimPrefix(uri, uriScheme))
	if err != nil || index < 0 {
		return 0, ErrorInvalidURI
	}
	return index, nil
}
