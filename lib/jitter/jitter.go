package jitter

import (
	"time"

	"github.com/mazen160/go-random"
)

// Range is a bounded random delay inserted before remote requests so
// traffic doesn't look machine-paced. The zero value never sleeps.
type Range struct {
	Min time.Duration
	Max time.Duration
}

func (r Range) Sleep() {
	if r.Max <= 0 {
		return
	}
	if r.Max <= r.Min {
		time.Sleep(r.Min)
		return
	}
	ms, err := random.IntRange(
		int(r.Min/time.Millisecond),
		int(r.Max/time.Millisecond),
	)
	if err != nil {
		time.Sleep(r.Min)
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
