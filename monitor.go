package dht

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Reader is anything that produces one reading per call, such as *DHT.
type Reader interface {
	Read() (Reading, error)
}

// Schedule paces the monitor loop.
type Schedule struct {
	// AfterSuccess is the pause after a good reading. Default 10 s.
	AfterSuccess time.Duration
	// AfterFailure is the pause after a bad reading. Default 2 s.
	AfterFailure time.Duration
	// Unit is the temperature unit printed.
	Unit TemperatureUnit
	// Once stops the loop after the first good reading, retrying bad ones
	// up to MaxAttempts times.
	Once        bool
	MaxAttempts int
}

func (s Schedule) withDefaults() Schedule {
	if s.AfterSuccess <= 0 {
		s.AfterSuccess = 10 * time.Second
	}
	if s.AfterFailure <= 0 {
		s.AfterFailure = 2 * time.Second
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 11
	}
	return s
}

// ErrNoReading is returned by Monitor in Once mode when every attempt was
// rejected.
var ErrNoReading = errors.New("dht: no valid reading")

// Monitor reads r forever, printing each good reading to out and a skip
// notice for each bad one. It returns nil when ctx is done, and the first
// hardware error otherwise.
func Monitor(ctx context.Context, r Reader, sched Schedule, out io.Writer, log zerolog.Logger) error {
	sched = sched.withDefaults()
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		start := time.Now()
		reading, err := r.Read()
		log.Debug().Int("attempt", attempt).Dur("took", time.Since(start)).Err(err).Msg("cycle done")

		wait := sched.AfterSuccess
		switch {
		case err == nil:
			fmt.Fprintln(out, reading.Format(sched.Unit))
			if sched.Once {
				return nil
			}
			attempt = 0
		case IsTransient(err):
			fmt.Fprintf(out, "Reading skipped: %v\n", err)
			log.Warn().Err(err).Int("attempt", attempt).Msg("reading rejected")
			if sched.Once && attempt >= sched.MaxAttempts {
				return fmt.Errorf("%w after %d attempts: %v", ErrNoReading, attempt, err)
			}
			wait = sched.AfterFailure
		default:
			log.Error().Err(err).Msg("sensor failure")
			return err
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
