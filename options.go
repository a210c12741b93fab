package dawg

import "go.uber.org/zap"

// DefaultMaxHeight bounds the height of the automaton, that is the length
// of the longest inserted form in UTF-16 code units.
const DefaultMaxHeight = 10000

// Option configures a Dawg.
type Option func(*Dawg)

// WithLogger sets the logger used for progress and statistics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dawg) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMaxHeight sets the height ceiling checked by Minimize.
// Values <= 0 keep DefaultMaxHeight.
func WithMaxHeight(h int) Option {
	return func(d *Dawg) {
		if h > 0 {
			d.maxHeight = h
		}
	}
}

// WithMaxNodes limits the number of live nodes. 0 means no limit.
func WithMaxNodes(n int) Option {
	return func(d *Dawg) {
		d.arena.maxNodes = n
	}
}

// WithMaxTransitions limits the number of live transitions. 0 means no limit.
func WithMaxTransitions(n int) Option {
	return func(d *Dawg) {
		d.arena.maxTrans = n
	}
}
