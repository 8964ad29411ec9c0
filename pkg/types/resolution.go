package types

// Method identifies which stage of the resolution cascade produced a match.
// Callers use it to decide whether to auto-apply a match or ask a human.
type Method string

// Person resolution methods.
const (
	MethodCache        Method = "cache"
	MethodExactName    Method = "exact_name"
	MethodExactEmail   Method = "exact_email"
	MethodRole         Method = "role"
	MethodFuzzyHigh    Method = "fuzzy_high"
	MethodFuzzyMedium  Method = "fuzzy_medium"
	MethodContextBoost Method = "context_boost"
	MethodNoMatch      Method = "no_match"
)

// Task resolution methods.
const (
	MethodExactTitle         Method = "exact_title"
	MethodFuzzyKeywordHigh   Method = "fuzzy_keyword_high"
	MethodFuzzyKeywordMedium Method = "fuzzy_keyword_medium"
	MethodNewTask            Method = "new_task"
)

// PersonMatch is the result of resolving a mention against a person pool.
// A nil Person with zero confidence is a successful "no match" outcome,
// not an error.
type PersonMatch struct {
	Person     *Person `json:"person,omitempty"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// TaskMatch is the result of resolving a mention against a task pool.
// IsNew signals that the mention likely describes a task not yet in the pool.
type TaskMatch struct {
	Task       *Task   `json:"task,omitempty"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
	IsNew      bool    `json:"is_new"`
}

// Recommendation is the suggested action for a duplicate pair.
type Recommendation string

const (
	RecommendMerge  Recommendation = "merge"
	RecommendReview Recommendation = "review"
)

// Tier is a coarse confidence band derived from a numeric score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
)

// DuplicatePair flags two entities of the same kind as likely duplicates.
// Evidence lists the human-readable signals that contributed to the score,
// in the order they were evaluated.
type DuplicatePair[E any] struct {
	A              E              `json:"a"`
	B              E              `json:"b"`
	Similarity     float64        `json:"similarity"`
	Evidence       []string       `json:"evidence"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     Tier           `json:"confidence"`
}
