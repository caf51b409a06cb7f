// Package audio synthesizes the built-in alarm tone patterns and manages
// per-user custom ringtones.
package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
)

// ToneStep is one note of a pattern: a waveform at a frequency for a
// duration, followed by silence.
type ToneStep struct {
	Frequency float64
	Waveform  Waveform
	Gain      float64
	Duration  time.Duration
	Gap       time.Duration
}

// Pattern is a deterministic tone sequence. Looping a pattern repeats
// its steps from the beginning.
type Pattern struct {
	ID    string
	Name  string
	Icon  string
	Steps []ToneStep
}

// RingtoneCustom selects the user-uploaded ringtone instead of a
// synthesized pattern.
const RingtoneCustom = "custom"

// Builtin patterns. Frequencies and timings mirror the classic set of
// alarm sounds; they are a presentation detail, not a contract.
var patterns = map[string]Pattern{
	"classic": {
		ID: "classic", Name: "Classic Beep", Icon: "🔔",
		Steps: []ToneStep{
			{Frequency: 800, Waveform: Sine, Gain: 0.5, Duration: 200 * time.Millisecond, Gap: 500 * time.Millisecond},
		},
	},
	"gentle": {
		ID: "gentle", Name: "Gentle Chime", Icon: "🎵",
		Steps: []ToneStep{
			{Frequency: 523, Waveform: Triangle, Gain: 0.4, Duration: 500 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 523 * 1.25, Waveform: Triangle, Gain: 0.4, Duration: 500 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 523 * 1.5, Waveform: Triangle, Gain: 0.4, Duration: 500 * time.Millisecond, Gap: 100 * time.Millisecond},
		},
	},
	"urgent": {
		ID: "urgent", Name: "Urgent Alert", Icon: "🚨",
		Steps: []ToneStep{
			{Frequency: 1000, Waveform: Square, Gain: 0.3, Duration: 100 * time.Millisecond, Gap: 150 * time.Millisecond},
		},
	},
	"melody": {
		ID: "melody", Name: "Soft Melody", Icon: "🎶",
		Steps: []ToneStep{
			{Frequency: 659, Waveform: Sine, Gain: 0.4, Duration: 300 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 659 * 1.125, Waveform: Sine, Gain: 0.4, Duration: 300 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 659 * 1.25, Waveform: Sine, Gain: 0.4, Duration: 300 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 659 * 1.5, Waveform: Sine, Gain: 0.4, Duration: 300 * time.Millisecond, Gap: 100 * time.Millisecond},
			{Frequency: 659 * 1.25, Waveform: Sine, Gain: 0.4, Duration: 300 * time.Millisecond, Gap: 100 * time.Millisecond},
		},
	},
	"digital": {
		ID: "digital", Name: "Digital Tone", Icon: "📱",
		Steps: []ToneStep{
			{Frequency: 880, Waveform: Square, Gain: 0.25, Duration: 150 * time.Millisecond, Gap: 50 * time.Millisecond},
			{Frequency: 880 * 0.75, Waveform: Square, Gain: 0.25, Duration: 150 * time.Millisecond, Gap: 50 * time.Millisecond},
		},
	},
}

func Patterns() map[string]Pattern {
	out := make(map[string]Pattern, len(patterns))
	for k, v := range patterns {
		out[k] = v
	}
	return out
}

func LookupPattern(id string) (Pattern, bool) {
	p, ok := patterns[id]
	return p, ok
}

// DefaultPattern is used when an unknown ringtone is selected.
const DefaultPattern = "classic"

// Render synthesizes the pattern as 16-bit mono PCM at the given sample
// rate. The output is deterministic for a given pattern and rate.
func (p Pattern) Render(sampleRate int) []int16 {
	var samples []int16
	for _, step := range p.Steps {
		n := int(float64(sampleRate) * step.Duration.Seconds())
		for i := 0; i < n; i++ {
			t := float64(i) / float64(sampleRate)
			phase := step.Frequency * t
			var v float64
			switch step.Waveform {
			case Square:
				if math.Mod(phase, 1.0) < 0.5 {
					v = 1
				} else {
					v = -1
				}
			case Triangle:
				v = 2*math.Abs(2*(phase-math.Floor(phase+0.5))) - 1
			default:
				v = math.Sin(2 * math.Pi * phase)
			}
			samples = append(samples, int16(v*step.Gain*math.MaxInt16))
		}
		gap := int(float64(sampleRate) * step.Gap.Seconds())
		samples = append(samples, make([]int16, gap)...)
	}
	return samples
}

// WAV encodes the pattern as a mono 16-bit PCM RIFF/WAVE file.
func (p Pattern) WAV(sampleRate int) []byte {
	samples := p.Render(sampleRate)
	dataLen := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
