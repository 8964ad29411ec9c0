package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kinsync/kinsync/pkg/types"
)

// Evidence-note thresholds: a similarity signal is only worth calling out to
// a human reviewer when it is strong on its own.
const (
	nameEvidenceThreshold  = 0.8
	titleEvidenceThreshold = 0.8
	descEvidenceThreshold  = 0.7
)

// Detector performs batch duplicate detection over a candidate pool. It
// enumerates all unordered pairs, so cost is quadratic in the pool size —
// fine for one family's roster or task list, and intended to run as a batch
// job rather than inline with interactive requests.
type Detector struct {
	cfg Config
}

// NewDetector creates a duplicate detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// FindDuplicatePersons scans a person pool for likely duplicates and returns
// flagged pairs sorted by score descending. Pairs below the review threshold
// are excluded entirely.
func (d *Detector) FindDuplicatePersons(pool []*types.Person) []types.DuplicatePair[*types.Person] {
	var pairs []types.DuplicatePair[*types.Person]
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			score, evidence := d.scorePersonPair(pool[i], pool[j])
			recommendation, tier, ok := d.classify(score)
			if !ok {
				continue
			}
			pairs = append(pairs, types.DuplicatePair[*types.Person]{
				A:              pool[i],
				B:              pool[j],
				Similarity:     score,
				Evidence:       evidence,
				Recommendation: recommendation,
				Confidence:     tier,
			})
		}
	}
	sortPairs(pairs)
	return pairs
}

// FindDuplicateTasks scans a task pool for likely duplicates and returns
// flagged pairs sorted by score descending.
func (d *Detector) FindDuplicateTasks(pool []*types.Task) []types.DuplicatePair[*types.Task] {
	var pairs []types.DuplicatePair[*types.Task]
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			score, evidence := d.scoreTaskPair(pool[i], pool[j])
			recommendation, tier, ok := d.classify(score)
			if !ok {
				continue
			}
			pairs = append(pairs, types.DuplicatePair[*types.Task]{
				A:              pool[i],
				B:              pool[j],
				Similarity:     score,
				Evidence:       evidence,
				Recommendation: recommendation,
				Confidence:     tier,
			})
		}
	}
	sortPairs(pairs)
	return pairs
}

// scorePersonPair combines name, email, and role signals into a weighted
// average. Each signal contributes to the weight sum only when both sides
// carry the field, so missing data neither penalizes nor inflates the score
// — the weights adapt to the evidence actually available.
func (d *Detector) scorePersonPair(a, b *types.Person) (float64, []string) {
	var score, factors float64
	var evidence []string

	if a.Name != "" && b.Name != "" {
		sim := Similarity(strings.ToLower(a.Name), strings.ToLower(b.Name))
		score += sim * d.cfg.NameWeight
		factors += d.cfg.NameWeight
		if sim > nameEvidenceThreshold {
			evidence = append(evidence, fmt.Sprintf("Similar names (%.0f%% match)", sim*100))
		}
	}

	// Emails are rarely coincidentally similar, so they carry the heaviest
	// weight of the person signals.
	if a.Email != "" && b.Email != "" {
		sim := Similarity(strings.ToLower(a.Email), strings.ToLower(b.Email))
		score += sim * d.cfg.EmailWeight
		factors += d.cfg.EmailWeight
		if sim > nameEvidenceThreshold {
			evidence = append(evidence, fmt.Sprintf("Similar emails (%.0f%% match)", sim*100))
		}
	}

	if a.Role != "" && b.Role != "" {
		factors += d.cfg.RoleWeight
		if a.Role == b.Role {
			score += d.cfg.RoleWeight
			evidence = append(evidence, "Same role")
		}
	}

	if factors == 0 {
		return 0, nil
	}
	return score / factors, evidence
}

// scoreTaskPair combines title, description, Fair Play card, assignee, and
// due-date proximity signals using the same adaptive-weight pattern as
// scorePersonPair.
func (d *Detector) scoreTaskPair(a, b *types.Task) (float64, []string) {
	var score, factors float64
	var evidence []string

	if a.Title != "" && b.Title != "" {
		sim := Similarity(strings.ToLower(a.Title), strings.ToLower(b.Title))
		score += sim * d.cfg.TitleWeight
		factors += d.cfg.TitleWeight
		if sim > titleEvidenceThreshold {
			evidence = append(evidence, fmt.Sprintf("Similar titles (%.0f%% match)", sim*100))
		}
	}

	if a.Description != "" && b.Description != "" {
		sim := Similarity(strings.ToLower(a.Description), strings.ToLower(b.Description))
		score += sim * d.cfg.DescWeight
		factors += d.cfg.DescWeight
		if sim > descEvidenceThreshold {
			evidence = append(evidence, fmt.Sprintf("Similar descriptions (%.0f%% match)", sim*100))
		}
	}

	if a.FairPlayCardID != "" && b.FairPlayCardID != "" {
		factors += d.cfg.CardWeight
		if a.FairPlayCardID == b.FairPlayCardID {
			score += d.cfg.CardWeight
			evidence = append(evidence, "Same Fair Play card")
		}
	}

	if a.AssignedTo != "" && b.AssignedTo != "" {
		factors += d.cfg.AssigneeWeight
		if a.AssignedTo == b.AssignedTo {
			score += d.cfg.AssigneeWeight
			evidence = append(evidence, "Same assignee")
		}
	}

	if a.DueDate != nil && b.DueDate != nil {
		factors += d.cfg.DueDateWeight
		days := math.Abs(a.DueDate.Sub(*b.DueDate).Hours()) / 24
		if days <= float64(d.cfg.DueDateWindowDays) {
			score += d.cfg.DueDateWeight
			evidence = append(evidence, fmt.Sprintf("Due dates %d days apart", int(math.Round(days))))
		}
	}

	if factors == 0 {
		return 0, nil
	}
	return score / factors, evidence
}

// classify maps a pair score to a recommendation and confidence tier. The
// third return is false when the pair should be excluded from output.
func (d *Detector) classify(score float64) (types.Recommendation, types.Tier, bool) {
	switch {
	case score >= d.cfg.MergeThreshold:
		return types.RecommendMerge, types.TierHigh, true
	case score >= d.cfg.ReviewThreshold:
		return types.RecommendReview, types.TierMedium, true
	default:
		return "", "", false
	}
}

// sortPairs orders pairs by score descending. The sort is stable so that
// equal-scored pairs keep their enumeration order.
func sortPairs[E any](pairs []types.DuplicatePair[E]) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
}
