package resolve

// tieBreak is one predicate in an entity type's ordered disambiguation
// chain. The first predicate matched by exactly one candidate decides.
type tieBreak func(Candidate) bool

// tieBreakers holds each entity type's ordered tie-break chain. Entity
// types with no entry have no "current" concept: multiple candidates are
// always ambiguous for them.
var tieBreakers = map[EntityType][]tieBreak{
	EntityCycle: {
		func(c Candidate) bool { return c.IsActive },
		func(c Candidate) bool { return c.IsNext },
		func(c Candidate) bool { return c.IsPrevious },
	},
}

// ambiguityHints suggests how a human can break the tie manually.
var ambiguityHints = map[EntityType]string{
	EntityTeam:      "use the team key or the canonical ID",
	EntityProject:   "use the canonical ID",
	EntityLabel:     "scope the lookup by team or use the canonical ID",
	EntityCycle:     "scope the lookup by team or use the canonical ID",
	EntityMilestone: "scope the lookup by project or use the canonical ID",
	EntityUser:      "use the canonical ID",
	EntityState:     "scope the lookup by team or use the canonical ID",
}

// disambiguate reduces a candidate set to a single ID. A single candidate
// wins immediately. Multiple candidates run through the entity type's
// tie-break chain; a predicate that exactly one candidate satisfies
// decides, anything else moves to the next predicate. An exhausted chain
// is an ambiguity error carrying every candidate.
func disambiguate(entity EntityType, token string, candidates []Candidate) (string, error) {
	if len(candidates) == 1 {
		return candidates[0].ID, nil
	}

	for _, predicate := range tieBreakers[entity] {
		var matched []Candidate
		for _, c := range candidates {
			if predicate(c) {
				matched = append(matched, c)
			}
		}
		if len(matched) == 1 {
			return matched[0].ID, nil
		}
	}

	return "", &AmbiguousError{
		Entity:     entity,
		Token:      token,
		Candidates: candidates,
		Hint:       ambiguityHints[entity],
	}
}
