package dht

import (
	"fmt"
	"runtime/debug"

	"periph.io/x/conn/v3/gpio"
)

// request sends the start signal and leaves the line as a pulled-up input,
// ready for the sensor to answer.
func (dht *DHT) request() error {
	// send start low
	if err := dht.line.Out(gpio.Low); err != nil {
		dht.line.Out(gpio.High)
		return fmt.Errorf("pin out low error: %w", err)
	}
	dht.sleep(dht.cfg.RequestPulse)

	// release to idle high, then listen
	if err := dht.line.Out(gpio.High); err != nil {
		return fmt.Errorf("pin out high error: %w", err)
	}
	if err := dht.line.In(gpio.PullUp, gpio.NoEdge); err != nil {
		dht.line.Out(gpio.High)
		return fmt.Errorf("pin in error: %w", err)
	}
	return nil
}

// capture busy reads the line and records every level change until MaxEvents
// edges were seen or the capture timeout expires. On expiry the partial
// window is returned with ErrCaptureTimeout.
func (dht *DHT) capture() (CaptureWindow, error) {
	// create variables ahead of time before critical timing part
	events := make(CaptureWindow, 0, MaxEvents)
	levelPrevious := dht.line.Read()
	var level gpio.Level
	deadline := dht.now().Add(dht.cfg.CaptureTimeout)

	for len(events) < MaxEvents {
		level = dht.line.Read()
		now := dht.now()
		if level != levelPrevious {
			edge := gpio.FallingEdge
			if level == gpio.High {
				edge = gpio.RisingEdge
			}
			events = append(events, EdgeEvent{Time: now, Edge: edge})
			levelPrevious = level
			continue
		}
		if now.After(deadline) {
			return events, fmt.Errorf("%w: %d of %d edges after %v", ErrCaptureTimeout, len(events), MaxEvents, dht.cfg.CaptureTimeout)
		}
	}
	return events, nil
}

// record runs one request and capture, then drives the line back high.
func (dht *DHT) record() (CaptureWindow, error) {
	// set lastRead so do not read more often than MinInterval
	dht.lastRead = dht.now()

	// disable garbage collection during critical timing part
	gcPercent := debug.SetGCPercent(-1)

	err := dht.request()
	if err != nil {
		debug.SetGCPercent(gcPercent)
		return nil, err
	}
	events, captureErr := dht.capture()

	// enable garbage collection, done with critical part
	debug.SetGCPercent(gcPercent)

	// set pin to high so ready for next time
	if err = dht.line.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("pin out high error: %w", err)
	}
	return events, captureErr
}
