package game

import "time"

type MatchOpt func(*Match)

// WithKit replaces the starting kit.
func WithKit(kit []*ItemSpec) MatchOpt {
	return func(m *Match) {
		m.kit = kit
	}
}

func WithShuffler(s Shuffler) MatchOpt {
	return func(m *Match) {
		m.shuffle = s
	}
}

func WithDice(d Dice) MatchOpt {
	return func(m *Match) {
		m.roll = d
	}
}

// WithChoiceTimeout bounds every decision. Zero waits until the match ends.
func WithChoiceTimeout(d time.Duration) MatchOpt {
	return func(m *Match) {
		m.choiceTimeout = d
	}
}
