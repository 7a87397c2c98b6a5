package stream

// DefaultFollowThreshold is how close to the bottom (in lines or
// pixels, depending on the view) the user must be for new arrivals to
// keep the view pinned to the end.
const DefaultFollowThreshold = 40

// Autoscroller decides whether newly arrived messages should force the
// view to the bottom. A user who scrolled up to read history is left
// alone; a user at (or near) the bottom follows the stream.
type Autoscroller struct {
	threshold int
	follow    bool
}

// NewAutoscroller creates a controller that starts in follow mode
func NewAutoscroller(threshold int) *Autoscroller {
	if threshold <= 0 {
		threshold = DefaultFollowThreshold
	}
	return &Autoscroller{threshold: threshold, follow: true}
}

// Observe recomputes follow state from a scroll event. distance from
// bottom = scrollHeight - scrollTop - clientHeight.
func (a *Autoscroller) Observe(scrollTop, scrollHeight, clientHeight int) {
	a.follow = scrollHeight-scrollTop-clientHeight < a.threshold
}

// SetFollow overrides follow state (explicit user toggle)
func (a *Autoscroller) SetFollow(follow bool) {
	a.follow = follow
}

// ShouldFollow reports whether an append should force the view to the
// bottom right now.
func (a *Autoscroller) ShouldFollow() bool {
	return a.follow
}
