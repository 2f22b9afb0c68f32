package domain

import "github.com/jonboulle/clockwork"

// clock supplies the ProcessedAt timestamp stamped onto enriched readings.
// The genmock and validate commands freeze it so regenerated fixtures are
// byte-for-byte reproducible.
var clock = clockwork.NewRealClock()

// SetClock replaces the enrichment time source. Passing nil restores the
// wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
