package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPatterns(t *testing.T) {
	all := Patterns()
	for _, id := range []string{"classic", "gentle", "urgent", "melody", "digital"} {
		p, ok := LookupPattern(id)
		require.True(t, ok, id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.Steps, id)
		assert.Contains(t, all, id)
	}

	_, ok := LookupPattern("custom")
	assert.False(t, ok, "custom is not a synthesized pattern")
}

func TestRenderDeterministic(t *testing.T) {
	p, _ := LookupPattern("classic")

	a := p.Render(8000)
	b := p.Render(8000)
	assert.Equal(t, a, b)

	// 200ms tone + 500ms gap at 8kHz
	assert.Len(t, a, 8000*700/1000)

	// the tone section actually carries signal
	var nonZero bool
	for _, s := range a[:1600] {
		if s != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero)

	// the gap is silence
	for _, s := range a[len(a)-100:] {
		assert.Equal(t, int16(0), s)
	}
}

func TestWAVHeader(t *testing.T) {
	p, _ := LookupPattern("digital")
	wav := p.WAV(8000)

	require.Greater(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(wav[24:28]))

	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	assert.Equal(t, int(dataLen), len(wav)-44)
}

func TestPlayerSelection(t *testing.T) {
	p := NewPlayer(nil)

	assert.Equal(t, DefaultPattern, p.Ringtone())
	assert.True(t, p.SetRingtone("urgent"))
	assert.Equal(t, "urgent", p.Ringtone())

	assert.False(t, p.SetRingtone("nope"))
	assert.Equal(t, "urgent", p.Ringtone())

	// custom requires an uploaded ringtone
	assert.False(t, p.SetRingtone(RingtoneCustom))
	p.SetCustom([]byte{1, 2, 3})
	assert.True(t, p.SetRingtone(RingtoneCustom))

	// removing the upload falls back to the default
	p.SetCustom(nil)
	assert.Equal(t, DefaultPattern, p.Ringtone())
}

type countingSink struct {
	plays, stops int
}

func (s *countingSink) Play([]byte) { s.plays++ }
func (s *countingSink) Stop()       { s.stops++ }

func TestPlayerPlayStop(t *testing.T) {
	sink := &countingSink{}
	p := NewPlayer(sink)

	p.Play()
	p.Play() // already ringing, no restart
	assert.Equal(t, 1, sink.plays)
	assert.True(t, p.Playing())

	p.Stop()
	p.Stop()
	assert.Equal(t, 1, sink.stops)
	assert.False(t, p.Playing())
}
