package match

import (
	"strings"
	"testing"
	"time"

	"github.com/kinsync/kinsync/pkg/types"
)

// TestClassify_Bands verifies the score-to-recommendation mapping, including
// exclusion just under the review threshold.
func TestClassify_Bands(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		score    float64
		wantRec  types.Recommendation
		wantTier types.Tier
		wantOK   bool
	}{
		{1.0, types.RecommendMerge, types.TierHigh, true},
		{0.8, types.RecommendMerge, types.TierHigh, true},
		{0.7999, types.RecommendReview, types.TierMedium, true},
		{0.65, types.RecommendReview, types.TierMedium, true},
		{0.6499, "", "", false},
		{0.0, "", "", false},
	}

	for _, tt := range tests {
		rec, tier, ok := d.classify(tt.score)
		if rec != tt.wantRec || tier != tt.wantTier || ok != tt.wantOK {
			t.Errorf("classify(%f) = (%q, %q, %v), want (%q, %q, %v)",
				tt.score, rec, tier, ok, tt.wantRec, tt.wantTier, tt.wantOK)
		}
	}
}

// TestFindDuplicatePersons_ExactPair verifies identical records score 1.0 with
// name and email evidence.
func TestFindDuplicatePersons_ExactPair(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{
		{ID: "p1", Name: "Sarah Johnson", Email: "sarah.j@email.com"},
		{ID: "p2", Name: "Sarah Johnson", Email: "sarah.j@email.com"},
	}

	pairs := d.FindDuplicatePersons(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	pair := pairs[0]
	if pair.Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", pair.Similarity)
	}
	if pair.Recommendation != types.RecommendMerge || pair.Confidence != types.TierHigh {
		t.Errorf("got %q/%q, want merge/high", pair.Recommendation, pair.Confidence)
	}
	assertEvidence(t, pair.Evidence, "Similar names (100% match)")
	assertEvidence(t, pair.Evidence, "Similar emails (100% match)")
}

// TestFindDuplicatePersons_AdaptiveWeights verifies a pair sharing only
// emails is scored on the email signal alone: missing names neither penalize
// nor dilute.
func TestFindDuplicatePersons_AdaptiveWeights(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{
		{ID: "p1", Email: "family@email.com"},
		{ID: "p2", Email: "family@email.com"},
	}

	pairs := d.FindDuplicatePersons(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0 from the email signal alone", pairs[0].Similarity)
	}
}

// TestFindDuplicatePersons_RoleSignal verifies the role factor contributes a
// flat weight and a "Same role" evidence note.
func TestFindDuplicatePersons_RoleSignal(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{
		{ID: "p1", Name: "Sarah Johnson", Role: types.RoleMother},
		{ID: "p2", Name: "Sara Johnson", Role: types.RoleMother},
	}

	pairs := d.FindDuplicatePersons(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}

	nameSim := Similarity("sarah johnson", "sara johnson")
	want := (nameSim*1.0 + 0.5) / 1.5
	if pairs[0].Similarity != want {
		t.Errorf("similarity = %f, want %f", pairs[0].Similarity, want)
	}
	assertEvidence(t, pairs[0].Evidence, "Same role")
}

// TestFindDuplicatePersons_NoSignals verifies a pool with no comparable fields
// produces no pairs.
func TestFindDuplicatePersons_NoSignals(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{{ID: "p1"}, {ID: "p2"}}

	if pairs := d.FindDuplicatePersons(pool); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(pairs))
	}
}

// TestFindDuplicatePersons_Unrelated verifies clearly distinct people are not
// flagged.
func TestFindDuplicatePersons_Unrelated(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{
		{ID: "p1", Name: "Sarah Johnson", Email: "sarah.j@email.com"},
		{ID: "p2", Name: "Bob Zimmermann", Email: "bz@other.org"},
	}

	if pairs := d.FindDuplicatePersons(pool); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %+v", pairs)
	}
}

// TestFindDuplicatePersons_SortedDescending verifies output ordering over a
// pool that yields multiple qualifying pairs.
func TestFindDuplicatePersons_SortedDescending(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Person{
		{ID: "p1", Name: "Sarah Johnson", Email: "sarah.j@email.com"},
		{ID: "p2", Name: "Sarah Johnson", Email: "sarah.j@email.com"},
		{ID: "p3", Name: "Sara Johnson"},
	}

	pairs := d.FindDuplicatePersons(pool)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Similarity > pairs[i-1].Similarity {
			t.Errorf("pairs out of order at %d: %f > %f", i, pairs[i].Similarity, pairs[i-1].Similarity)
		}
	}
	if pairs[0].A.ID != "p1" || pairs[0].B.ID != "p2" {
		t.Errorf("expected the exact pair first, got %s/%s", pairs[0].A.ID, pairs[0].B.ID)
	}
}

// TestFindDuplicateTasks_SharedCardScenario exercises the flat task signals:
// two differently-titled chores sharing a Fair Play card, an assignee, and a
// close due date should surface for review, not merge.
func TestFindDuplicateTasks_SharedCardScenario(t *testing.T) {
	d := NewDetector(DefaultConfig())
	due1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due2 := due1.Add(48 * time.Hour)
	pool := []*types.Task{
		{ID: "t1", Title: "Pack lunch boxes", FairPlayCardID: "fp-12", AssignedTo: "per:sarah", DueDate: &due1},
		{ID: "t2", Title: "Water the plants", FairPlayCardID: "fp-12", AssignedTo: "per:sarah", DueDate: &due2},
	}

	pairs := d.FindDuplicateTasks(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	pair := pairs[0]

	titleSim := Similarity("pack lunch boxes", "water the plants")
	want := (titleSim*1.5 + 0.5 + 0.3 + 0.3) / (1.5 + 0.5 + 0.3 + 0.3)
	if pair.Similarity != want {
		t.Errorf("similarity = %f, want %f", pair.Similarity, want)
	}
	if pair.Recommendation != types.RecommendReview || pair.Confidence != types.TierMedium {
		t.Errorf("got %q/%q, want review/medium", pair.Recommendation, pair.Confidence)
	}
	assertEvidence(t, pair.Evidence, "Same Fair Play card")
	assertEvidence(t, pair.Evidence, "Same assignee")
	assertEvidence(t, pair.Evidence, "Due dates 2 days apart")
}

// TestFindDuplicateTasks_TitleAndDescription verifies the weighted text
// signals and their evidence notes.
func TestFindDuplicateTasks_TitleAndDescription(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pool := []*types.Task{
		{ID: "t1", Title: "Grocery shopping", Description: "Buy milk and eggs"},
		{ID: "t2", Title: "Grocery shopping", Description: "Buy milk and eggs"},
	}

	pairs := d.FindDuplicateTasks(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", pairs[0].Similarity)
	}
	if pairs[0].Recommendation != types.RecommendMerge {
		t.Errorf("recommendation = %q, want merge", pairs[0].Recommendation)
	}
	assertEvidence(t, pairs[0].Evidence, "Similar titles (100% match)")
	assertEvidence(t, pairs[0].Evidence, "Similar descriptions (100% match)")
}

// TestFindDuplicateTasks_DueDateOutsideWindow verifies far-apart due dates
// weigh against the pair without producing evidence.
func TestFindDuplicateTasks_DueDateOutsideWindow(t *testing.T) {
	d := NewDetector(DefaultConfig())
	due1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due2 := due1.AddDate(0, 1, 0)
	pool := []*types.Task{
		{ID: "t1", Title: "Grocery shopping", DueDate: &due1},
		{ID: "t2", Title: "Grocery shopping", DueDate: &due2},
	}

	pairs := d.FindDuplicateTasks(pool)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}

	// Identical titles, but the due-date factor counts against the score.
	want := (1.0 * 1.5) / (1.5 + 0.3)
	if pairs[0].Similarity != want {
		t.Errorf("similarity = %f, want %f", pairs[0].Similarity, want)
	}
	for _, e := range pairs[0].Evidence {
		if strings.HasPrefix(e, "Due dates") {
			t.Errorf("unexpected due-date evidence for out-of-window dates: %v", pairs[0].Evidence)
		}
	}
}

// TestFindDuplicateTasks_Empty verifies empty and single-element pools yield
// no pairs.
func TestFindDuplicateTasks_Empty(t *testing.T) {
	d := NewDetector(DefaultConfig())

	if pairs := d.FindDuplicateTasks(nil); len(pairs) != 0 {
		t.Errorf("nil pool: expected no pairs, got %d", len(pairs))
	}
	one := []*types.Task{{ID: "t1", Title: "Grocery shopping"}}
	if pairs := d.FindDuplicateTasks(one); len(pairs) != 0 {
		t.Errorf("single task: expected no pairs, got %d", len(pairs))
	}
}

func assertEvidence(t *testing.T, evidence []string, want string) {
	t.Helper()
	for _, e := range evidence {
		if e == want {
			return
		}
	}
	t.Errorf("evidence %v missing %q", evidence, want)
}
