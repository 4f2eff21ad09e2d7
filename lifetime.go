package goToken

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Preset is a named token lifetime.
type Preset uint8

const (
	// PresetOneDay is 86400 seconds.
	PresetOneDay Preset = iota + 1
	// PresetOneWeek is 604800 seconds.
	PresetOneWeek
	// PresetOneMonth is 2592000 seconds (30 days).
	PresetOneMonth
)

var presetSeconds = map[Preset]int64{
	PresetOneDay:   86400,
	PresetOneWeek:  604800,
	PresetOneMonth: 2592000,
}

var presetNames = map[string]Preset{
	"1day":   PresetOneDay,
	"1week":  PresetOneWeek,
	"1month": PresetOneMonth,
}

func (p Preset) String() string {
	for name, preset := range presetNames {
		if preset == p {
			return name
		}
	}
	return "preset(" + strconv.Itoa(int(p)) + ")"
}

// Lifetime is either a number of seconds or a Preset.
type Lifetime struct {
	seconds int64
	preset  Preset
}

var (
	// OneDay is the 1day preset.
	OneDay = FromPreset(PresetOneDay)
	// OneWeek is the 1week preset.
	OneWeek = FromPreset(PresetOneWeek)
	// OneMonth is the 1month preset.
	OneMonth = FromPreset(PresetOneMonth)
)

// Seconds returns a Lifetime of n seconds.
func Seconds(n int64) Lifetime {
	return Lifetime{seconds: n}
}

// Duration returns a Lifetime of d truncated to whole seconds.
func Duration(d time.Duration) Lifetime {
	return Lifetime{seconds: int64(d / time.Second)}
}

// FromPreset returns the Lifetime for p.
func FromPreset(p Preset) Lifetime {
	return Lifetime{preset: p}
}

// ParseLifetime accepts "1day", "1week", "1month" or a decimal number of seconds.
// Any other input fails with ErrUnknownLifetimePreset.
func ParseLifetime(s string) (Lifetime, error) {
	s = strings.TrimSpace(s)
	if p, ok := presetNames[strings.ToLower(s)]; ok {
		return FromPreset(p), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Lifetime{}, fmt.Errorf("%w: %q", ErrUnknownLifetimePreset, s)
	}
	l := Seconds(n)
	if _, err := l.Resolve(); err != nil {
		return Lifetime{}, err
	}
	return l, nil
}

// Resolve returns the lifetime in seconds.
func (l Lifetime) Resolve() (int64, error) {
	if l.preset != 0 {
		n, ok := presetSeconds[l.preset]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrUnknownLifetimePreset, l.preset)
		}
		return n, nil
	}
	if l.seconds <= 0 {
		return 0, fmt.Errorf("%w: %d seconds", ErrInvalidLifetime, l.seconds)
	}
	return l.seconds, nil
}

func (l Lifetime) String() string {
	if l.preset != 0 {
		return l.preset.String()
	}
	return strconv.FormatInt(l.seconds, 10) + "s"
}
