package app

import "time"

// Clock abstracts wall-clock reads so countdowns can be tested without waiting.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
