//go:build windows
// +build windows

package dht

import "errors"

// NewDHT is not supported on windows, which has no GPIO host driver.
func NewDHT(pinName string, cfg Config) (*DHT, error) {
	return nil, errors.New("dht: gpio is not supported on windows")
}
