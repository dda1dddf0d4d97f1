package resolver

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// DefaultThreshold is the minimum similarity score accepted for a fuzzy match
const DefaultThreshold = 0.8

// Resolution is the tagged result of resolving one speaker label.
// Member is nil when the label is unresolved; that is a normal outcome
// requiring manual follow-up, not an error.
type Resolution struct {
	Label  string
	Member *entities.TeamMember
	Score  float64
}

// Matched reports whether the label resolved to a team member
func (r Resolution) Matched() bool {
	return r.Member != nil
}

// Resolver maps free-text speaker labels to team members. Resolve is pure and
// deterministic: identical (labels, roster) inputs always yield identical
// results, which is what makes re-processing a meeting idempotent.
type Resolver struct {
	threshold float64
}

// New creates a resolver with the given acceptance threshold (0-1)
func New(threshold float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{threshold: threshold}
}

// Resolve maps each distinct label to a member or unresolved. An empty roster
// or empty label set resolves everything to unresolved. Multiple labels may
// resolve to the same member; name variants are expected.
func (r *Resolver) Resolve(labels []string, roster []*entities.TeamMember) map[string]Resolution {
	out := make(map[string]Resolution, len(labels))

	// Deterministic candidate order: earliest joined first, id as final tie-break
	candidates := make([]*entities.TeamMember, len(roster))
	copy(candidates, roster)
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].JoinedAt.Equal(candidates[j].JoinedAt) {
			return candidates[i].JoinedAt.Before(candidates[j].JoinedAt)
		}
		return candidates[i].UserID.String() < candidates[j].UserID.String()
	})

	for _, label := range labels {
		if _, seen := out[label]; seen {
			continue
		}
		out[label] = r.resolveOne(label, candidates)
	}
	return out
}

func (r *Resolver) resolveOne(label string, candidates []*entities.TeamMember) Resolution {
	res := Resolution{Label: label}

	normLabel := Normalize(label)
	if normLabel == "" {
		return res
	}

	// Exact match on normalized form first
	for _, m := range candidates {
		if !m.IsActive() {
			continue
		}
		if Normalize(m.DisplayName) == normLabel {
			res.Member = m
			res.Score = 1
			return res
		}
	}

	// Fuzzy match: highest score wins, candidates already ordered so the
	// earliest-joined member takes a tie
	var best *entities.TeamMember
	var bestScore float64
	for _, m := range candidates {
		if !m.IsActive() {
			continue
		}
		score := Similarity(normLabel, Normalize(m.DisplayName))
		if score > bestScore {
			best = m
			bestScore = score
		}
	}

	if best != nil && bestScore >= r.threshold {
		res.Member = best
		res.Score = bestScore
	}
	return res
}

// honorifics stripped during normalization, after case-folding and diacritic
// removal ("chị" arrives here as "chi")
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"anh": true, "chi": true, "em": true, "co": true, "thay": true,
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize case-folds a name, strips diacritics, punctuation and honorific
// titles, and collapses whitespace
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if honorifics[f] && len(fields) > 1 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Similarity scores two normalized names on a 0-1 scale. The score is the
// better of whole-string edit-distance similarity and the mean best
// per-token similarity, so a bare first name still scores 1 against the
// member's full display name.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	whole := editSimilarity(a, b)

	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	var sum float64
	for _, at := range aTokens {
		var best float64
		for _, bt := range bTokens {
			if s := editSimilarity(at, bt); s > best {
				best = s
			}
		}
		sum += best
	}
	tokenScore := sum / float64(len(aTokens))

	if tokenScore > whole {
		return tokenScore
	}
	return whole
}

func editSimilarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
