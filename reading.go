package dht

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/physic"
)

// Deci is a fixed-point value counted in tenths of a unit.
type Deci int

// String formats d with exactly one fractional digit.
func (d Deci) String() string {
	sign := ""
	v := int(d)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconv.Itoa(v/10) + "." + strconv.Itoa(v%10)
}

// Reading is a validated humidity and temperature pair.
type Reading struct {
	Humidity    Deci // %RH
	Temperature Deci // °C
}

// TemperatureIn returns the temperature in unit, rounded to the nearest
// tenth.
func (r Reading) TemperatureIn(unit TemperatureUnit) Deci {
	if unit != Fahrenheit {
		return r.Temperature
	}
	// tenths of °F = tenths of °C * 9/5 + 320
	f := int(r.Temperature)*9 + 1600
	if f >= 0 {
		return Deci((f + 2) / 5)
	}
	return Deci((f - 2) / 5)
}

// Format renders r the way the monitor prints it.
func (r Reading) Format(unit TemperatureUnit) string {
	return fmt.Sprintf("Temperature: %s, Humidity: %s", r.TemperatureIn(unit), r.Humidity)
}

func (r Reading) String() string {
	return r.Format(Celsius)
}

// Env converts r to periph physical units. physic.RelativeHumidity cannot
// hold much more than 100 %, so humidity is clamped to 0..MaxHumidity.
func (r Reading) Env() physic.Env {
	h := int64(r.Humidity)
	if h < 0 {
		h = 0
	} else if h > int64(MaxHumidity) {
		h = int64(MaxHumidity)
	}
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(r.Temperature)*100*physic.MilliKelvin,
		Humidity:    physic.RelativeHumidity(h * int64(physic.PercentRH) / 10),
	}
}
