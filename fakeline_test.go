package dht

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// segment is a stretch of constant level on the line.
type segment struct {
	level gpio.Level
	d     time.Duration
}

// fakeLine plays back a scripted sensor answer on a virtual clock. Every Read
// advances the clock by step. Each call to In starts the next wave; the last
// one repeats.
type fakeLine struct {
	t     time.Time
	step  time.Duration
	waves [][]segment

	wave    []segment
	start   time.Time
	input   bool
	out     gpio.Level
	calls   []string
	outErr  error
	inErr   error
	numIn   int
	lastOut gpio.Level
}

func newFakeLine(waves ...[]segment) *fakeLine {
	return &fakeLine{
		t:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		step:  time.Microsecond,
		waves: waves,
	}
}

func (f *fakeLine) Out(l gpio.Level) error {
	if f.outErr != nil {
		return f.outErr
	}
	f.input = false
	f.out = l
	f.lastOut = l
	f.calls = append(f.calls, "out:"+l.String())
	return nil
}

func (f *fakeLine) In(pull gpio.Pull, edge gpio.Edge) error {
	if f.inErr != nil {
		return f.inErr
	}
	f.input = true
	f.start = f.t
	f.calls = append(f.calls, "in")
	if len(f.waves) > 0 {
		i := f.numIn
		if i >= len(f.waves) {
			i = len(f.waves) - 1
		}
		f.wave = f.waves[i]
	}
	f.numIn++
	return nil
}

func (f *fakeLine) Read() gpio.Level {
	f.t = f.t.Add(f.step)
	if !f.input {
		return f.out
	}
	el := f.t.Sub(f.start)
	for _, s := range f.wave {
		if el < s.d {
			return s.level
		}
		el -= s.d
	}
	return gpio.High
}

func (f *fakeLine) now() time.Time { return f.t }

func (f *fakeLine) sleep(d time.Duration) { f.t = f.t.Add(d) }

var errWire = errors.New("wire fault")

// Nominal pulse lengths of the sensor's answer.
const (
	waitHigh  = 20 * time.Microsecond
	respLow   = 80 * time.Microsecond
	respHigh  = 80 * time.Microsecond
	bitLow    = 50 * time.Microsecond
	zeroHigh  = 26 * time.Microsecond
	oneHigh   = 70 * time.Microsecond
	trailLow  = 50 * time.Microsecond
	trailIdle = 1 * time.Millisecond
)

// sensorWave builds the line levels a sensor produces when sending frame.
// Only the first nbits bits are sent when nbits is less than 8*len(frame).
func sensorWave(frame []byte, nbits int) []segment {
	w := []segment{
		{gpio.High, waitHigh},
		{gpio.Low, respLow},
		{gpio.High, respHigh},
	}
	for i := 0; i < nbits && i < 8*len(frame); i++ {
		high := zeroHigh
		if frame[i/8]&(0x80>>(i%8)) != 0 {
			high = oneHigh
		}
		w = append(w, segment{gpio.Low, bitLow}, segment{gpio.High, high})
	}
	if nbits >= 8*len(frame) {
		w = append(w, segment{gpio.Low, trailLow})
	}
	return append(w, segment{gpio.High, trailIdle})
}

func frameWave(frame ...byte) []segment {
	return sensorWave(frame, 8*len(frame))
}

// newTestDHT returns a DHT driven by line on its virtual clock, with the
// minimum read interval disabled.
func newTestDHT(line *fakeLine, cfg Config) *DHT {
	if cfg.MinInterval == 0 {
		cfg.MinInterval = -1
	}
	dht, err := NewDHTFromLine("fake", line, cfg)
	if err != nil {
		panic(err)
	}
	dht.now = line.now
	dht.sleep = line.sleep
	dht.lastRead = time.Time{}
	return dht
}

// window builds a capture window from a start time and the gaps between
// successive edges, alternating from first.
func window(first gpio.Edge, gaps ...time.Duration) CaptureWindow {
	t := time.Unix(1000, 0)
	edge := first
	w := CaptureWindow{{Time: t, Edge: edge}}
	for _, g := range gaps {
		t = t.Add(g)
		if edge == gpio.FallingEdge {
			edge = gpio.RisingEdge
		} else {
			edge = gpio.FallingEdge
		}
		w = append(w, EdgeEvent{Time: t, Edge: edge})
	}
	return w
}

// bitWindow builds a 2 + 2*len(bits) edge window: two handshake edges, then
// for every bit a rising edge followed by a falling edge after a short or
// long high pulse.
func bitWindow(bits []int, short, long time.Duration) CaptureWindow {
	gaps := []time.Duration{respHigh, bitLow}
	for i, b := range bits {
		if b == 1 {
			gaps = append(gaps, long)
		} else {
			gaps = append(gaps, short)
		}
		if i < len(bits)-1 {
			gaps = append(gaps, bitLow)
		}
	}
	return window(gpio.RisingEdge, gaps...)
}
