package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Strategy describes how a non-canonical token will be looked up.
type Strategy int

const (
	// ByName matches the entity's exact name (or team key) field.
	ByName Strategy = iota

	// ByIdentifier parses a human-facing issue identifier like "ENG-123".
	ByIdentifier

	// ByGroupPath resolves a compound "group/label" path in two steps.
	ByGroupPath
)

// Classification is the outcome of classifying one token.
type Classification struct {
	// Canonical is true when the token is already a canonical ID; ID holds
	// it and no remote lookup is needed.
	Canonical bool
	ID        string

	Strategy Strategy

	// Group and Child are set for ByGroupPath.
	Group string
	Child string

	// TeamKey and Number are set for ByIdentifier when the token parsed.
	TeamKey string
	Number  int
}

// identifierPattern matches a human-facing issue identifier: a team key
// followed by a dash and a sequence number.
var identifierPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-(\d+)$`)

// IsCanonicalID reports whether a token already is a canonical ID: the
// fixed 36-character, dash-segmented 8-4-4-4-12 hex shape. A canonical ID
// is trusted as-is and never re-resolved.
func IsCanonicalID(token string) bool {
	if len(token) != 36 {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}

// Classify decides whether a token is already canonical or needs a lookup,
// and with which strategy. Pure function; never calls the remote API.
func Classify(entity EntityType, token string) Classification {
	if IsCanonicalID(token) {
		return Classification{Canonical: true, ID: token}
	}

	if entity == EntityIssue {
		cls := Classification{Strategy: ByIdentifier}
		if m := identifierPattern.FindStringSubmatch(token); m != nil {
			cls.TeamKey = strings.ToUpper(m[1])
			cls.Number, _ = strconv.Atoi(m[2])
		}
		return cls
	}

	if entity == EntityLabel && strings.Contains(token, "/") {
		group, child, _ := strings.Cut(token, "/")
		return Classification{
			Strategy: ByGroupPath,
			Group:    strings.TrimSpace(group),
			Child:    strings.TrimSpace(child),
		}
	}

	return Classification{Strategy: ByName}
}
