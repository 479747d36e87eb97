package strategy

import "github.com/pulkitch/strategy-backtester/internal/indicator"

// transition is the position state machine: given the trade-direction
// policy, the current position and the bar's crossover event it returns
// the next position and the bar's order intents in execution order.
// A flip always lists Close before the new open; nil intents mean hold.
// It is a pure function and the sole authority over position changes.
func transition(mode TradeMode, pos Position, event indicator.Cross) (Position, []Intent) {
	if event == indicator.CrossNone {
		return pos, nil
	}

	switch mode {
	case OnlyBuy:
		return transitionOnlyBuy(pos, event)
	case OnlySell:
		return transitionOnlySell(pos, event)
	default:
		return transitionBoth(pos, event)
	}
}

func transitionOnlyBuy(pos Position, event indicator.Cross) (Position, []Intent) {
	switch event {
	case indicator.FastAboveSlow:
		switch pos {
		case Flat:
			return Long, []Intent{OpenLong}
		case Short:
			// Short is unreachable under OnlyBuy; resolved defensively.
			return Long, []Intent{Close, OpenLong}
		}
	case indicator.FastBelowSlow:
		if pos == Long {
			return Flat, []Intent{Close}
		}
	}
	return pos, nil
}

func transitionOnlySell(pos Position, event indicator.Cross) (Position, []Intent) {
	switch event {
	case indicator.FastBelowSlow:
		switch pos {
		case Flat:
			return Short, []Intent{OpenShort}
		case Long:
			// Long is unreachable under OnlySell; close only, no
			// same-bar short open.
			return Flat, []Intent{Close}
		}
	case indicator.FastAboveSlow:
		if pos == Short {
			return Flat, []Intent{Close}
		}
	}
	return pos, nil
}

func transitionBoth(pos Position, event indicator.Cross) (Position, []Intent) {
	switch event {
	case indicator.FastAboveSlow:
		switch pos {
		case Flat:
			return Long, []Intent{OpenLong}
		case Short:
			return Long, []Intent{Close, OpenLong}
		}
	case indicator.FastBelowSlow:
		switch pos {
		case Flat:
			return Short, []Intent{OpenShort}
		case Long:
			return Short, []Intent{Close, OpenShort}
		}
	}
	// No pyramiding: an event in the direction already held is a no-op.
	return pos, nil
}
