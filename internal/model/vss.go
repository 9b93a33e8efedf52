package model

// VssSession is the handle returned by VssCoordinator.Create (§4.6). It
// must be released exactly once per job, on every exit path.
type VssSession struct {
	// OriginalToShadowPath maps each original source path to the path that
	// reads through the frozen shadow copy.
	OriginalToShadowPath map[string]string
	ShadowIDs            []string
	active               bool
}

func NewVssSession() *VssSession {
	return &VssSession{OriginalToShadowPath: map[string]string{}, active: true}
}

func (s *VssSession) Active() bool { return s != nil && s.active }

// Deactivate marks the session released. VssCoordinator.Release calls this
// exactly once per job; ResolvePath keeps working afterwards (the volume
// shadow copy itself may already be gone, callers should not resolve paths
// after release).
func (s *VssSession) Deactivate() { s.active = false }

// ResolvePath returns the shadow path for an original source path, or the
// original path unchanged if no snapshot covers it.
func (s *VssSession) ResolvePath(original string) string {
	if s == nil {
		return original
	}
	if shadow, ok := s.OriginalToShadowPath[original]; ok {
		return shadow
	}
	return original
}
