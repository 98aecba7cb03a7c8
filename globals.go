package dht

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// TemperatureUnit is the temperature unit wanted, either Celsius or Fahrenheit
type TemperatureUnit int

const (
	// Celsius temperature unit
	Celsius TemperatureUnit = iota
	// Fahrenheit temperature unit
	Fahrenheit
)

// Protocol constants.
const (
	// DataBits is the number of bits the sensor sends per reading.
	DataBits = 40
	// FrameBytes is the number of bytes in a frame, checksum included.
	FrameBytes = DataBits / 8
	// HandshakeEdges is the number of leading edges produced by the sensor's
	// response pulse. They carry no data.
	HandshakeEdges = 2
	// MaxEvents bounds a capture window: the response pulse, a low and a high
	// edge per bit, and the falling edge that ends the last bit.
	MaxEvents = HandshakeEdges + 2*DataBits + 1
)

// Errors returned by a measurement cycle. All of them are transient: the
// reading is dropped and the next cycle may succeed.
var (
	ErrCaptureTimeout = errors.New("dht: capture timeout")
	ErrFrameLength    = errors.New("dht: bad frame length")
	ErrChecksum       = errors.New("dht: checksum mismatch")
	ErrOutOfRange     = errors.New("dht: humidity out of range")
)

// MaxHumidity is the highest relative humidity a sensor can report, 100.0 %.
const MaxHumidity Deci = 1000

// IsTransient reports whether err is a bad reading rather than a hardware
// failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrCaptureTimeout) ||
		errors.Is(err, ErrFrameLength) ||
		errors.Is(err, ErrChecksum) ||
		errors.Is(err, ErrOutOfRange)
}

// Line is the part of a GPIO pin the recorder needs. gpio.PinIO satisfies it.
type Line interface {
	Out(l gpio.Level) error
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// EdgeEvent is a single level change seen on the line.
type EdgeEvent struct {
	Time time.Time
	Edge gpio.Edge // gpio.RisingEdge or gpio.FallingEdge
}

// CaptureWindow is the ordered list of edges recorded in one cycle.
type CaptureWindow []EdgeEvent

// Config controls protocol timing. Zero fields take their defaults.
type Config struct {
	// RequestPulse is how long the line is held low to request a reading.
	// Default 3 ms.
	RequestPulse time.Duration
	// CaptureTimeout bounds the whole capture. Default 50 ms.
	CaptureTimeout time.Duration
	// Threshold separates a 0 bit from a 1 bit. Default 35 µs.
	Threshold time.Duration
	// MinInterval is the minimum time between two requests. Default 2 s,
	// negative disables the guard.
	MinInterval time.Duration
}

// Default timing.
const (
	DefaultRequestPulse   = 3 * time.Millisecond
	DefaultCaptureTimeout = 50 * time.Millisecond
	DefaultThreshold      = 35 * time.Microsecond
	DefaultMinInterval    = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.RequestPulse <= 0 {
		c.RequestPulse = DefaultRequestPulse
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = DefaultCaptureTimeout
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.MinInterval < 0 {
		c.MinInterval = 0
	} else if c.MinInterval == 0 {
		c.MinInterval = DefaultMinInterval
	}
	return c
}

// DHT struct to interface with the sensor.
// Call NewDHT to create a new one.
type DHT struct {
	mu       sync.Mutex
	name     string
	line     Line
	cfg      Config
	lastRead time.Time

	// replaced in tests
	now   func() time.Time
	sleep func(time.Duration)

	halt chan struct{}
}
