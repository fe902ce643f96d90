// Package alarm signals that a countdown has reached zero.
package alarm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

type Alarm interface {
	Ring()
}

// Bell rings the terminal bell.
type Bell struct {
	out io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) Ring() {
	fmt.Fprint(b.out, "\a")
}

// Silent is used when alarms are disabled.
type Silent struct{}

func (Silent) Ring() {}

// Sound plays a WAV file through the default audio device.
type Sound struct {
	buffer *beep.Buffer
	volume float64
}

// NewSound decodes the file at path into memory and opens the speaker at its
// sample rate. Volume is in beep's base-2 scale: 0 is unchanged, -1 halves.
func NewSound(path string, volume float64) (*Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alarm sound: %w", err)
	}
	defer f.Close()

	buffer, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	format := buffer.Format()
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	return &Sound{buffer: buffer, volume: volume}, nil
}

func decode(r io.Reader) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

func (s *Sound) Ring() {
	streamer := s.buffer.Streamer(0, s.buffer.Len())
	speaker.Play(&effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   s.volume,
		Silent:   false,
	})
}

// Open returns the alarm described by the arguments, falling back to the bell
// on out when the sound file is unusable.
func Open(enabled bool, soundPath string, volume float64, out io.Writer) (Alarm, error) {
	if !enabled {
		return Silent{}, nil
	}
	if soundPath == "" {
		return NewBell(out), nil
	}
	s, err := NewSound(soundPath, volume)
	if err != nil {
		return NewBell(out), err
	}
	return s, nil
}
