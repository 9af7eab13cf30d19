package integration

// DefaultFor resolves the configuration an unconfigured project defaults
// from: the closest ancestor group's integration of the same kind wins over
// the instance-level one.
//
// ancestorGroupIDs must be ordered closest-first. candidates are custom
// (non-inherited) group- or instance-level instances of one kind.
func DefaultFor(candidates []*Instance, ancestorGroupIDs []int64) *Instance {
	byGroup := make(map[int64]*Instance, len(candidates))
	var instanceLevel *Instance
	for _, candidate := range candidates {
		if candidate.UsesDefaultSettings() {
			continue
		}
		switch {
		case candidate.GroupLevel():
			byGroup[*candidate.GroupID] = candidate
		case candidate.InstanceLevel():
			instanceLevel = candidate
		}
	}
	for _, groupID := range ancestorGroupIDs {
		if found, ok := byGroup[groupID]; ok {
			return found
		}
	}
	return instanceLevel
}
