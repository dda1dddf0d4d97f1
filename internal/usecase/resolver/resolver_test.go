package resolver

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

func member(name string, joined time.Time) *entities.TeamMember {
	return &entities.TeamMember{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		UserID:      uuid.New(),
		DisplayName: name,
		Status:      entities.MemberStatusActive,
		Role:        entities.MemberRoleMember,
		JoinedAt:    joined,
	}
}

func TestResolve_NameVariants(t *testing.T) {
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	alice := member("Alice Smith", joined)
	bob := member("Bob Lee", joined)
	roster := []*entities.TeamMember{alice, bob}

	r := New(DefaultThreshold)
	got := r.Resolve([]string{"Alice", "alice smith", "Bob"}, roster)

	if m := got["Alice"].Member; m == nil || m.UserID != alice.UserID {
		t.Fatalf("Alice should resolve to Alice Smith, got %+v", got["Alice"])
	}
	if m := got["alice smith"].Member; m == nil || m.UserID != alice.UserID {
		t.Fatalf("alice smith should resolve to Alice Smith, got %+v", got["alice smith"])
	}
	if m := got["Bob"].Member; m == nil || m.UserID != bob.UserID {
		t.Fatalf("Bob should resolve to Bob Lee, got %+v", got["Bob"])
	}
}

func TestResolve_EmptyRoster(t *testing.T) {
	r := New(DefaultThreshold)
	got := r.Resolve([]string{"Alice", "Bob"}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 resolutions got %d", len(got))
	}
	for label, res := range got {
		if res.Matched() {
			t.Fatalf("label %q should be unresolved with empty roster", label)
		}
	}
}

func TestResolve_EmptyLabels(t *testing.T) {
	r := New(DefaultThreshold)
	got := r.Resolve(nil, []*entities.TeamMember{member("Alice Smith", time.Now())})
	if len(got) != 0 {
		t.Fatalf("expected no resolutions got %d", len(got))
	}
}

func TestResolve_Deterministic(t *testing.T) {
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	roster := []*entities.TeamMember{
		member("Alice Smith", joined),
		member("Bob Lee", joined.Add(time.Hour)),
		member("Carol Nguyễn", joined.Add(2*time.Hour)),
	}
	labels := []string{"Alice", "bob", "carol nguyen", "Nobody Known"}

	r := New(DefaultThreshold)
	first := r.Resolve(labels, roster)
	second := r.Resolve(labels, roster)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("resolve is not deterministic for identical inputs")
	}
}

func TestResolve_DiacriticsAndHonorifics(t *testing.T) {
	joined := time.Now()
	carol := member("Carol Nguyễn", joined)
	r := New(DefaultThreshold)

	got := r.Resolve([]string{"chị Carol Nguyen"}, []*entities.TeamMember{carol})
	if m := got["chị Carol Nguyen"].Member; m == nil || m.UserID != carol.UserID {
		t.Fatalf("diacritic/honorific variant should resolve, got %+v", got)
	}
}

func TestResolve_BelowThresholdUnresolved(t *testing.T) {
	r := New(DefaultThreshold)
	got := r.Resolve([]string{"Zebra Quux"}, []*entities.TeamMember{member("Alice Smith", time.Now())})
	if got["Zebra Quux"].Matched() {
		t.Fatalf("dissimilar label should stay unresolved, got %+v", got["Zebra Quux"])
	}
}

func TestResolve_TieBreakEarliestJoined(t *testing.T) {
	early := member("Alex Tran", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := member("Alex Pham", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	// "Alex" scores 1.0 against both via token match; earliest joined wins
	r := New(DefaultThreshold)
	got := r.Resolve([]string{"Alex"}, []*entities.TeamMember{late, early})
	if m := got["Alex"].Member; m == nil || m.UserID != early.UserID {
		t.Fatalf("tie should break to earliest joined member, got %+v", got["Alex"])
	}
}

func TestResolve_InactiveMembersIgnored(t *testing.T) {
	gone := member("Alice Smith", time.Now())
	gone.Status = entities.MemberStatusInactive

	r := New(DefaultThreshold)
	got := r.Resolve([]string{"Alice Smith"}, []*entities.TeamMember{gone})
	if got["Alice Smith"].Matched() {
		t.Fatal("inactive member must not receive assignments")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Alice   Smith ": "alice smith",
		"Mr. Bob Lee":      "bob lee",
		"Nguyễn Văn A":     "nguyen van a",
		"alice-smith":      "alice smith",
		"Dr":               "dr", // lone honorific is kept, nothing else to match on
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if s := Similarity("alice", "alice"); s != 1 {
		t.Fatalf("identical strings should score 1, got %v", s)
	}
	if s := Similarity("", "alice"); s != 0 {
		t.Fatalf("empty string should score 0, got %v", s)
	}
	if s := Similarity("alice", "alice smith"); s < DefaultThreshold {
		t.Fatalf("first-name label should clear the threshold, got %v", s)
	}
	if s := Similarity("zebra", "alice smith"); s >= DefaultThreshold {
		t.Fatalf("unrelated names should stay below threshold, got %v", s)
	}
}
