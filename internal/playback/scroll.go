package playback

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Rand is the randomness the simulator consumes. *rand.Rand satisfies it;
// tests pass a scripted sequence.
type Rand interface {
	Float64() float64
}

// Action is what a tick does.
type Action int

const (
	ActionPause Action = iota
	ActionScroll
)

func (a Action) String() string {
	if a == ActionPause {
		return "pause"
	}
	return "scroll"
}

// Direction is the scroll direction: +1 down the page, -1 back up.
type Direction int

const (
	Forward Direction = 1
	Back    Direction = -1
)

// Decision is the outcome of one tick. Duration is the pause length for
// ActionPause and the animation length for ActionScroll (zero means jump).
type Decision struct {
	Action    Action
	Direction Direction
	Distance  int
	Duration  time.Duration
	Eased     bool
}

// Offset is the signed scroll distance in pixels.
func (d Decision) Offset() int {
	return int(d.Direction) * d.Distance
}

// Profile holds the probability table and timings of one playback style.
type Profile struct {
	Name string

	PauseChance float64
	PauseMin    time.Duration
	PauseMax    time.Duration

	BackChance  float64
	DistanceMin int
	DistanceMax int

	SlowChance float64
	SlowScroll time.Duration
	FastScroll time.Duration
	Eased      bool

	DelayMin time.Duration
	DelayMax time.Duration

	// Buffer is added to the narration length when sizing the capture.
	Buffer time.Duration
	// LoadSettle is waited after the first navigation, ClickSettle after a
	// phase link was followed.
	LoadSettle  time.Duration
	ClickSettle time.Duration

	// VideoSuffix names the silent capture next to the output file.
	VideoSuffix string
}

// Standard is the default style: frequent reading pauses and eased scrolls.
var Standard = Profile{
	Name:        "standard",
	PauseChance: 0.35,
	PauseMin:    2000 * time.Millisecond,
	PauseMax:    5000 * time.Millisecond,
	BackChance:  0.12,
	DistanceMin: 250,
	DistanceMax: 600,
	SlowChance:  0.30,
	SlowScroll:  1500 * time.Millisecond,
	FastScroll:  800 * time.Millisecond,
	Eased:       true,
	DelayMin:    1200 * time.Millisecond,
	DelayMax:    3200 * time.Millisecond,
	Buffer:      5 * time.Second,
	LoadSettle:  4 * time.Second,
	ClickSettle: 3 * time.Second,
	VideoSuffix: "-video.mp4",
}

// Light is the quicker style with instant scroll jumps.
var Light = Profile{
	Name:        "light",
	PauseChance: 0.25,
	PauseMin:    1500 * time.Millisecond,
	PauseMax:    3500 * time.Millisecond,
	BackChance:  0.15,
	DistanceMin: 200,
	DistanceMax: 600,
	DelayMin:    800 * time.Millisecond,
	DelayMax:    2000 * time.Millisecond,
	Buffer:      3 * time.Second,
	LoadSettle:  3 * time.Second,
	ClickSettle: 2 * time.Second,
	VideoSuffix: "-video-only.mp4",
}

// ProfileByName resolves a profile name; empty selects Standard.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Standard.Name:
		return Standard, nil
	case Light.Name:
		return Light, nil
	default:
		return Profile{}, fmt.Errorf("unknown playback profile %q", name)
	}
}

// Decide draws the next tick. Randomness is consumed in a fixed order:
// pause check, then pause length or back check, distance and speed check.
func Decide(r Rand, p Profile) Decision {
	if r.Float64() < p.PauseChance {
		return Decision{
			Action:   ActionPause,
			Duration: between(r, p.PauseMin, p.PauseMax),
		}
	}

	d := Decision{
		Action:    ActionScroll,
		Direction: Forward,
		Eased:     p.Eased,
	}
	if r.Float64() < p.BackChance {
		d.Direction = Back
	}
	d.Distance = p.DistanceMin + int(r.Float64()*float64(p.DistanceMax-p.DistanceMin))

	if p.SlowChance > 0 && r.Float64() < p.SlowChance {
		d.Duration = p.SlowScroll
	} else {
		d.Duration = p.FastScroll
	}
	return d
}

// Delay draws the wait that follows every tick.
func Delay(r Rand, p Profile) time.Duration {
	return between(r, p.DelayMin, p.DelayMax)
}

// between returns a uniform duration in [lo, hi).
func between(r Rand, lo, hi time.Duration) time.Duration {
	return lo + time.Duration(r.Float64()*float64(hi-lo))
}

// EaseInOutQuad maps linear progress t in [0,1] to eased progress.
func EaseInOutQuad(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 2 * t * t
	default:
		return 1 - math.Pow(-2*t+2, 2)/2
	}
}

// CaptureDuration sizes the recording: the target length, stretched to the
// narration rounded up to whole seconds plus the profile buffer.
func CaptureDuration(target time.Duration, audioSeconds float64, buffer time.Duration) time.Duration {
	needed := time.Duration(math.Ceil(audioSeconds))*time.Second + buffer
	if target > needed {
		return target
	}
	return needed
}
