package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/cache"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyflie"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyradio"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyusb"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtpdevice"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/deck"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/flight"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/motion"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/multiranger"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/sim"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/station"

	"github.com/urfave/cli"
)

// Time the motors need after arming before the first setpoint.
const armingDelay = 1 * time.Second

// vehicle is a Crazyflie, real or simulated, ready to take off.
type vehicle struct {
	commander *motion.Commander
	source    flight.Source
	params    station.ParamSource // nil in simulation
	sim       *sim.Vehicle        // nil on a real Crazyflie

	closers []func()
}

// Close lands if still flying, then releases everything in reverse order.
func (v *vehicle) Close() {
	if v.commander != nil {
		if err := v.commander.Land(); err != nil {
			log.Printf("land: %s", err)
		}
	}
	for i := len(v.closers) - 1; i >= 0; i-- {
		v.closers[i]()
	}
}

func openVehicle(ctx context.Context, c *cli.Context) (*vehicle, error) {
	if c.Bool("sim") {
		return openSim(c)
	}
	return openCrazyflie(ctx, c)
}

func motionConfig(c *cli.Context) motion.Config {
	mc := motion.DefaultConfig()
	mc.Height = c.Float64("height")
	mc.Velocity = c.Float64("velocity")
	return mc
}

// openLink opens the radio or USB link named by uri.
func openLink(uri string) (crtpdevice.CrtpDevice, uint8, uint64, func(), error) {
	if crazyusb.IsURI(uri) {
		index, err := crazyusb.ParseURI(uri)
		if err != nil {
			return nil, 0, 0, nil, err
		}
		usb, err := crazyusb.Open(index)
		if err != nil {
			return nil, 0, 0, nil, err
		}
		return usb, 0, 0, usb.Close, nil
	}

	link, err := crazyradio.ParseURI(uri)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	radio, err := crazyradio.Open(link)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	return radio, link.Channel, link.Address, radio.Close, nil
}

func openCrazyflie(ctx context.Context, c *cli.Context) (*vehicle, error) {
	uri := c.String("uri")

	store, err := cache.Open(c.String("cache"))
	if err != nil {
		return nil, err
	}

	device, channel, address, closeLink, err := openLink(uri)
	if err != nil {
		return nil, err
	}
	v := &vehicle{closers: []func(){closeLink}}

	cf, err := crazyflie.Connect(device, channel, address, store)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	v.closers = append(v.closers, cf.DisconnectOnEmpty)
	log.Printf("Connected to %s", uri)

	if err := cf.ParamTOCGetList(); err != nil {
		v.Close()
		return nil, err
	}
	if err := cf.LogTOCGetList(); err != nil {
		v.Close()
		return nil, err
	}
	v.params = cf

	if decks := splitList(c.String("deck")); len(decks) > 0 {
		if _, err := deck.Wait(ctx, cf, decks, deck.DefaultTimeout); err != nil {
			v.Close()
			return nil, err
		}
	}

	if c.BoolT("arm") {
		if err := cf.ArmingRequest(true); err != nil {
			v.Close()
			return nil, err
		}
		time.Sleep(armingDelay)
	}

	sensor, err := multiranger.Start(cf, multiranger.DefaultPeriod, true)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.closers = append(v.closers, func() {
		if err := sensor.Close(); err != nil {
			log.Printf("multiranger: %s", err)
		}
	})
	v.source = sensor

	v.commander, err = motion.New(cf, motionConfig(c))
	if err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func openSim(c *cli.Context) (*vehicle, error) {
	opts := sim.Options{}
	for _, s := range c.StringSlice("obstacle") {
		var b sim.Box
		if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.Min.X, &b.Min.Y, &b.Max.X, &b.Max.Y); err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", s, err)
		}
		opts.Obstacles = append(opts.Obstacles, b)
	}
	for _, s := range c.StringSlice("ceiling") {
		var ceil sim.Ceiling
		b := &ceil.Footprint
		if _, err := fmt.Sscanf(s, "%f,%f,%f,%f,%f", &b.Min.X, &b.Min.Y, &b.Max.X, &b.Max.Y, &ceil.Clearance); err != nil {
			return nil, fmt.Errorf("ceiling %q: %w", s, err)
		}
		opts.Ceilings = append(opts.Ceilings, ceil)
	}

	simulated := sim.New(opts)
	commander, err := motion.New(simSetpointer{simulated}, motionConfig(c))
	if err != nil {
		return nil, err
	}
	log.Printf("Simulating with %d obstacles and %d ceilings", len(opts.Obstacles), len(opts.Ceilings))
	return &vehicle{commander: commander, source: simulated, sim: simulated}, nil
}

// simSetpointer flies a simulated vehicle from hover setpoints. Height is
// not simulated.
type simSetpointer struct {
	vehicle *sim.Vehicle
}

func (s simSetpointer) HoverSetpointSend(vx, vy, yawrate, zDistance float32) error {
	return s.vehicle.Emit(float64(vx), float64(vy))
}

func (s simSetpointer) StopSetpointSend() error {
	return s.vehicle.Stop()
}

func (s simSetpointer) NotifySetpointStop(remainValidMillis uint32) error {
	return nil
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

