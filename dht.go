package dht

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// senseRetries is how many bad readings Sense tolerates before giving up.
const senseRetries = 3

// HostInit calls periph.io host.Init(). This needs to be done before NewDHT
// can look up a pin by name.
func HostInit() error {
	_, err := host.Init()
	return err
}

// NewDHTFromLine creates a DHT on an already resolved line. The line is set
// high so it is ready for the first read.
func NewDHTFromLine(name string, line Line, cfg Config) (*DHT, error) {
	if line == nil {
		return nil, errors.New("dht: line is nil")
	}
	dht := &DHT{
		name:  name,
		line:  line,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		sleep: time.Sleep,
	}

	// set pin to high so ready for first read
	if err := dht.line.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("pin out high error: %w", err)
	}

	// set lastRead so the first read gives the pin up to a second to warm up
	warmup := time.Second
	if warmup > dht.cfg.MinInterval {
		warmup = dht.cfg.MinInterval
	}
	dht.lastRead = dht.now().Add(warmup - dht.cfg.MinInterval)

	return dht, nil
}

// Read runs one measurement cycle and returns the validated reading.
// Read sleeps first if the previous request was less than MinInterval ago.
// Bad readings return an error for which IsTransient is true; any other
// error comes from the hardware.
func (dht *DHT) Read() (Reading, error) {
	dht.mu.Lock()
	defer dht.mu.Unlock()
	return dht.read()
}

func (dht *DHT) read() (Reading, error) {
	if wait := dht.cfg.MinInterval - dht.now().Sub(dht.lastRead); wait > 0 {
		dht.sleep(wait)
	}

	events, err := dht.record()
	if err != nil {
		return Reading{}, err
	}

	values, err := Decode(events, dht.cfg.Threshold)
	if err != nil {
		return Reading{}, err
	}
	return Validate(values)
}

// ReadRetry will call Read until there is no error, a hardware error occurs,
// or maxRetries is hit.
func (dht *DHT) ReadRetry(maxRetries int) (reading Reading, err error) {
	err = fmt.Errorf("dht: no attempts made (maxRetries %d)", maxRetries)
	for i := 0; i < maxRetries; i++ {
		reading, err = dht.Read()
		if err == nil || !IsTransient(err) {
			return
		}
	}
	return
}

// String returns the name of the pin the sensor is on.
func (dht *DHT) String() string {
	return "DHT{" + dht.name + "}"
}

// Halt stops a running SenseContinuous.
func (dht *DHT) Halt() error {
	dht.mu.Lock()
	defer dht.mu.Unlock()
	if dht.halt != nil {
		close(dht.halt)
		dht.halt = nil
	}
	return nil
}

// Sense reads the sensor once, retrying bad readings a few times. A
// humidity above 100 % returns ErrOutOfRange.
func (dht *DHT) Sense(e *physic.Env) error {
	r, err := dht.ReadRetry(senseRetries)
	if err != nil {
		return err
	}
	if r.Humidity < 0 || r.Humidity > MaxHumidity {
		return fmt.Errorf("%w: %v %%", ErrOutOfRange, r.Humidity)
	}
	env := r.Env()
	e.Temperature = env.Temperature
	e.Humidity = env.Humidity
	return nil
}

// SenseContinuous reads the sensor every interval until Halt is called.
// Bad readings are skipped; a hardware error closes the channel, after which
// SenseContinuous may be called again.
func (dht *DHT) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < dht.cfg.MinInterval {
		return nil, fmt.Errorf("dht: interval %v is shorter than %v", interval, dht.cfg.MinInterval)
	}
	dht.mu.Lock()
	if dht.halt != nil {
		dht.mu.Unlock()
		return nil, errors.New("dht: already sensing continuously")
	}
	halt := make(chan struct{})
	dht.halt = halt
	dht.mu.Unlock()

	out := make(chan physic.Env)
	go func() {
		defer close(out)
		defer func() {
			dht.mu.Lock()
			if dht.halt == halt {
				dht.halt = nil
			}
			dht.mu.Unlock()
		}()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			var e physic.Env
			err := dht.Sense(&e)
			switch {
			case err == nil:
				select {
				case out <- e:
				case <-halt:
					return
				}
			case !IsTransient(err):
				return
			}
			select {
			case <-t.C:
			case <-halt:
				return
			}
		}
	}()
	return out, nil
}

// Precision reports a tenth of a unit for both values.
func (dht *DHT) Precision(e *physic.Env) {
	e.Temperature = 100 * physic.MilliKelvin
	e.Humidity = physic.PercentRH / 10
}

var _ physic.SenseEnv = (*DHT)(nil)
