package main

import (
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyradio"

	"github.com/caarlos0/env/v6"
)

// config holds the process-wide defaults. Command flags override them.
type config struct {
	URI    string `env:"CFLIB_URI"`
	Cache  string `env:"CRAZY_CACHE"`
	Listen string `env:"CRAZY_LISTEN"`
}

var cfg config

func loadConfig() error {
	cfg = config{URI: crazyradio.DefaultURI}
	return env.Parse(&cfg)
}
