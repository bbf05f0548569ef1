package neural

// RemapIDs rebinds a circuit description from boundary id sourceID to
// targetID and returns new maps; the inputs are not modified.
//
// If targetID is already a unit id, that unit moves to a spare id: the
// smallest non-negative id that is neither targetID nor a unit id. Both
// substitutions (sourceID -> targetID, old targetID -> spare) are applied
// in one pass, so neither sees the other's result.
func RemapIDs(sourceID, targetID int, units map[int]Template, wiring Wiring) (map[int]Template, Wiring) {
	remap := idRemapper(sourceID, targetID, func(id int) bool {
		_, ok := units[id]
		return ok
	}, len(units))

	newUnits := make(map[int]Template, len(units))
	for id, t := range units {
		newUnits[remap(id)] = t
	}

	newWiring := make(Wiring, len(wiring))
	for src, dests := range wiring {
		moved := make([]Index, len(dests))
		for i, d := range dests {
			moved[i] = Index{Unit: remap(d.Unit), Port: d.Port}
		}
		newWiring[Index{Unit: remap(src.Unit), Port: src.Port}] = moved
	}

	return newUnits, newWiring
}

// idRemapper returns the id substitution RemapIDs applies. has reports
// whether an id is taken by a unit; count is the number of units.
func idRemapper(sourceID, targetID int, has func(int) bool, count int) func(int) int {
	if sourceID == targetID {
		return func(id int) int { return id }
	}

	if !has(targetID) {
		return func(id int) int {
			if id == sourceID {
				return targetID
			}
			return id
		}
	}

	// At most count ids are taken, so 0..count holds a free one besides
	// targetID.
	spare := -1
	for i := 0; i <= count; i++ {
		if i != targetID && !has(i) {
			spare = i
			break
		}
	}

	return func(id int) int {
		switch id {
		case sourceID:
			return targetID
		case targetID:
			return spare
		}
		return id
	}
}
