package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

func main() {
	if err := loadConfig(); err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}

	app := cli.NewApp()
	app.Name = "hellodrone"
	app.Usage = "Fly a Crazyflie with multiranger obstacle avoidance"
	app.Commands = commands()

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

// signalContext is cancelled on the first SIGINT or SIGTERM, which lands
// the vehicle. A second signal is left to the default handler.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-signalChan:
			log.Printf("%s received, landing", sig)
			signal.Stop(signalChan)
			cancel()
		case <-ctx.Done():
			signal.Stop(signalChan)
		}
	}()

	return ctx, cancel
}
