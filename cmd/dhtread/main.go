// Command dhtread polls a DHT11/DHT22 sensor and prints each reading.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	dht "github.com/justinliew/go-dht"
	"github.com/justinliew/go-dht/internal/logging"
)

type options struct {
	pin      string
	interval time.Duration
	retry    time.Duration
	timeout  time.Duration
	unit     dht.TemperatureUnit
	once     bool
	attempts int
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var o options
	var unit string
	fs := flag.NewFlagSet("dhtread", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.pin, "pin", "GPIO4", "GPIO pin the sensor data line is on")
	fs.DurationVar(&o.interval, "interval", 10*time.Second, "Pause after a good reading")
	fs.DurationVar(&o.retry, "retry", 2*time.Second, "Pause after a bad reading")
	fs.DurationVar(&o.timeout, "timeout", dht.DefaultCaptureTimeout, "Maximum time to wait for the sensor's answer")
	fs.StringVar(&unit, "unit", "c", "Temperature unit, c or f")
	fs.BoolVar(&o.once, "once", false, "Exit after the first good reading")
	fs.IntVar(&o.attempts, "attempts", 11, "Attempts before giving up with -once")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch strings.ToLower(unit) {
	case "c", "celsius":
		o.unit = dht.Celsius
	case "f", "fahrenheit":
		o.unit = dht.Fahrenheit
	default:
		return options{}, fmt.Errorf("unknown unit %q", unit)
	}
	if strings.TrimSpace(o.pin) == "" {
		return options{}, fmt.Errorf("pin is required")
	}
	if o.retry < dht.DefaultMinInterval {
		return options{}, fmt.Errorf("retry %v is shorter than the sensor's %v minimum", o.retry, dht.DefaultMinInterval)
	}
	return o, nil
}

func main() {
	log := logging.New("dhtread", os.Stderr)

	o, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("bad arguments")
	}

	if err := dht.HostInit(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}
	sensor, err := dht.NewDHT(o.pin, dht.Config{CaptureTimeout: o.timeout})
	if err != nil {
		log.Fatal().Err(err).Str("pin", o.pin).Msg("cannot claim pin")
	}
	log.Info().Str("sensor", sensor.String()).Msg("sensor ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = dht.Monitor(ctx, sensor, dht.Schedule{
		AfterSuccess: o.interval,
		AfterFailure: o.retry,
		Unit:         o.unit,
		Once:         o.once,
		MaxAttempts:  o.attempts,
	}, os.Stdout, log)
	if err != nil {
		stop()
		log.Fatal().Err(err).Msg("stopped")
	}
}
