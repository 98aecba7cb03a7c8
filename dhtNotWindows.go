//go:build !windows
// +build !windows

package dht

import (
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"
)

// NewDHT to create a new DHT struct on the named pin, for example "GPIO4".
// HostInit must have been called first.
func NewDHT(pinName string, cfg Config) (*DHT, error) {
	// get pin
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("dht: pin %q not found", pinName)
	}
	return NewDHTFromLine(pin.Name(), pin, cfg)
}
