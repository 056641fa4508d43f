package stats

// AvatarState is the light level shown for one category of the avatar.
type AvatarState string

const (
	Dormant   AvatarState = "dormant"
	Awakening AvatarState = "awakening"
	Glowing   AvatarState = "glowing"
	Radiant   AvatarState = "radiant"
)

// AvatarStates is the projection for all three categories.
type AvatarStates struct {
	Mind AvatarState `json:"mind"`
	Body AvatarState `json:"body"`
	Soul AvatarState `json:"soul"`
}

func (s AvatarStates) Get(c Category) AvatarState {
	switch c {
	case Mind:
		return s.Mind
	case Body:
		return s.Body
	case Soul:
		return s.Soul
	}
	return Dormant
}

// ResolveAvatarState maps today's flags for c plus the live execution
// signal to a light state. A completed category stays lit while a new
// session for it runs.
func ResolveAvatarState(c Category, today DayFlags, executing bool) AvatarState {
	switch {
	case today.Has(c) && today.All():
		return Radiant
	case today.Has(c):
		return Glowing
	case executing:
		return Awakening
	default:
		return Dormant
	}
}

// ResolveAvatarStates recomputes every category from scratch; no
// transition history is kept.
func ResolveAvatarStates(today DayFlags, executing map[Category]bool) AvatarStates {
	return AvatarStates{
		Mind: ResolveAvatarState(Mind, today, executing[Mind]),
		Body: ResolveAvatarState(Body, today, executing[Body]),
		Soul: ResolveAvatarState(Soul, today, executing[Soul]),
	}
}
