package crazyflie

import (
	"log"
	"strings"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

func (cf *Crazyflie) consoleSystemInit() {
	cf.callbackAdd(crtp.PortConsole, cf.handleConsoleResponse)
}

// handleConsoleResponse logs firmware printouts one complete line at a time.
func (cf *Crazyflie) handleConsoleResponse(resp []byte) {
	for _, line := range cf.consoleAppend(string(resp[1:])) {
		log.Printf("%X console: %s", cf.address, line)
	}
}

func (cf *Crazyflie) consoleAppend(str string) []string {
	var lines []string
	for {
		i := strings.Index(str, "\n")
		if i == -1 {
			cf.accumulatedConsolePrint += str
			return lines
		}
		lines = append(lines, cf.accumulatedConsolePrint+str[:i])
		cf.accumulatedConsolePrint = ""
		str = str[i+1:]
	}
}
