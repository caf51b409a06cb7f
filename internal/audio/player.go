package audio

import (
	"sync"
)

// Sink receives rendered audio. Environments with a real output device
// plug one in; tests and headless runs use the default no-op sink.
type Sink interface {
	// Play starts playback of WAV-encoded audio, looping until Stop.
	Play(wav []byte)
	Stop()
}

type nopSink struct{}

func (nopSink) Play([]byte) {}
func (nopSink) Stop()       {}

// Player holds the selected ringtone (a builtin pattern id or
// RingtoneCustom) and routes playback to a Sink. At most one alarm
// sound plays at a time; starting a new one stops the previous.
type Player struct {
	sink       Sink
	sampleRate int

	mu       sync.Mutex
	selected string
	custom   []byte // raw uploaded audio, nil if none
	playing  bool
}

func NewPlayer(sink Sink) *Player {
	if sink == nil {
		sink = nopSink{}
	}
	return &Player{sink: sink, sampleRate: 44100, selected: DefaultPattern}
}

// SetRingtone selects a builtin pattern or RingtoneCustom. Selecting
// custom without an uploaded ringtone is rejected.
func (p *Player) SetRingtone(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id == RingtoneCustom {
		if p.custom == nil {
			return false
		}
		p.selected = id
		return true
	}
	if _, ok := LookupPattern(id); !ok {
		return false
	}
	p.selected = id
	return true
}

func (p *Player) Ringtone() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SetCustom installs raw uploaded audio for the custom ringtone. Passing
// nil removes it; if custom was selected the player falls back to the
// default pattern.
func (p *Player) SetCustom(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.custom = data
	if data == nil && p.selected == RingtoneCustom {
		p.selected = DefaultPattern
	}
}

// Play starts the selected ringtone. A second Play while already
// playing is a no-op, mirroring an alarm that is already ringing.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.playing = true

	if p.selected == RingtoneCustom && p.custom != nil {
		p.sink.Play(p.custom)
		return
	}
	pattern, ok := LookupPattern(p.selected)
	if !ok {
		pattern, _ = LookupPattern(DefaultPattern)
	}
	p.sink.Play(pattern.WAV(p.sampleRate))
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.playing = false
	p.sink.Stop()
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
