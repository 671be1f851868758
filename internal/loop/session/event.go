package session

// EventType identifies something that happened during a Step.
type EventType int

const (
	EventScored         EventType = iota // Count obstacles passed
	EventBonus                           // Count bonus points from a gift
	EventFollowerGained                  // A reindeer joined the chain
	EventFollowersLost                   // Count followers lost to a hit
	EventRoundOver                       // Count is the final score
)

func (t EventType) String() string {
	switch t {
	case EventScored:
		return "scored"
	case EventBonus:
		return "bonus"
	case EventFollowerGained:
		return "follower_gained"
	case EventFollowersLost:
		return "followers_lost"
	case EventRoundOver:
		return "round_over"
	default:
		return "unknown"
	}
}

// Event is a frame outcome, positioned at the player's center so renderers
// can attach effects to it.
type Event struct {
	Type  EventType
	Count int
	X, Y  float64
}
