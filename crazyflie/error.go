package crazyflie

import "fmt"

type crazyflieError uint8

func (e crazyflieError) Error() string {
	return fmt.Sprintf("crazyflie: %s", crazyflieErrorString[e])
}

const (
	ErrorNoResponse crazyflieError = iota
	ErrorDisconnected

	ErrorLogBlockOrItemNotFound
	ErrorLogBlockNoMemory
	ErrorLogBlockTooLong
	ErrorLogBlockPeriodTooShort
	ErrorLogBlockExists

	ErrorParamNotFound
	ErrorParamReadOnly
	ErrorParamType

	ErrorUnknown
)

var crazyflieErrorString = map[crazyflieError]string{
	ErrorNoResponse:   "not responding",
	ErrorDisconnected: "disconnected",

	ErrorLogBlockOrItemNotFound: "log block or item not found",
	ErrorLogBlockNoMemory:       "no memory to allocate log block",
	ErrorLogBlockTooLong:        "log block is too long",
	ErrorLogBlockPeriodTooShort: "log block reporting period too short",
	ErrorLogBlockExists:         "log block already exists",

	ErrorParamNotFound: "parameter not found",
	ErrorParamReadOnly: "parameter is read-only",
	ErrorParamType:     "value does not fit the parameter type",

	ErrorUnknown: "an unknown error occurred",
}

// logErrorFromCode maps the errno values the log subsystem answers with.
func logErrorFromCode(code byte) error {
	switch code {
	case 0:
		return nil
	case 2:
		return ErrorLogBlockOrItemNotFound
	case 7:
		return ErrorLogBlockTooLong
	case 12:
		return ErrorLogBlockNoMemory
	case 17:
		return ErrorLogBlockExists
	default:
		return ErrorUnknown
	}
}
