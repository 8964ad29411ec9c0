package match

// Config holds the thresholds and evidence weights for the matching engine.
// All values default to the tuned constants in DefaultConfig; they are
// exposed here (and loadable from YAML) so deployments can adjust matching
// behavior without code changes.
type Config struct {
	// Person/task fuzzy-stage thresholds.
	FuzzyHighThreshold    float64 `yaml:"fuzzy_high_threshold"`    // auto-accept and cache at or above this similarity
	FuzzyMediumThreshold  float64 `yaml:"fuzzy_medium_threshold"`  // offer for review at or above this similarity
	ContextBoostThreshold float64 `yaml:"context_boost_threshold"` // minimum similarity for a context rescue

	// Task combined-score thresholds (similarity blended with keyword overlap).
	CombinedHighThreshold   float64 `yaml:"combined_high_threshold"`
	CombinedMediumThreshold float64 `yaml:"combined_medium_threshold"`
	TitleSimWeight          float64 `yaml:"title_sim_weight"`    // character-similarity share of the combined score
	KeywordOverlapWeight    float64 `yaml:"keyword_overlap_weight"` // keyword-overlap share of the combined score

	// Fixed confidences reported by non-fuzzy stages.
	CacheConfidence        float64 `yaml:"cache_confidence"`         // remembered inference, deliberately below 1.0
	RoleConfidence         float64 `yaml:"role_confidence"`          // role-keyword heuristic
	ContextBoostConfidence float64 `yaml:"context_boost_confidence"` // weak text match rescued by context

	// Duplicate-detection evidence weights.
	NameWeight     float64 `yaml:"name_weight"`      // person name similarity
	EmailWeight    float64 `yaml:"email_weight"`     // person email similarity (strongest identity signal)
	RoleWeight     float64 `yaml:"role_weight"`      // person role equality
	TitleWeight    float64 `yaml:"title_weight"`     // task title similarity (strongest task signal)
	DescWeight     float64 `yaml:"desc_weight"`      // task description similarity
	CardWeight     float64 `yaml:"card_weight"`      // same Fair Play card
	AssigneeWeight float64 `yaml:"assignee_weight"`  // same assignee
	DueDateWeight  float64 `yaml:"due_date_weight"`  // due dates within the proximity window

	// DueDateWindowDays is the maximum day gap counted as due-date proximity.
	DueDateWindowDays int `yaml:"due_date_window_days"`

	// Duplicate classification thresholds.
	MergeThreshold  float64 `yaml:"merge_threshold"`  // at or above: recommend merge, high confidence
	ReviewThreshold float64 `yaml:"review_threshold"` // at or above: recommend review, medium confidence

	// AliasCacheSize bounds each mention→entity alias cache (LRU eviction).
	AliasCacheSize int `yaml:"alias_cache_size"`
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		FuzzyHighThreshold:    0.85,
		FuzzyMediumThreshold:  0.7,
		ContextBoostThreshold: 0.6,

		CombinedHighThreshold:   0.8,
		CombinedMediumThreshold: 0.65,
		TitleSimWeight:          0.7,
		KeywordOverlapWeight:    0.3,

		CacheConfidence:        0.95,
		RoleConfidence:         0.9,
		ContextBoostConfidence: 0.75,

		NameWeight:     1.0,
		EmailWeight:    1.5,
		RoleWeight:     0.5,
		TitleWeight:    1.5,
		DescWeight:     1.0,
		CardWeight:     0.5,
		AssigneeWeight: 0.3,
		DueDateWeight:  0.3,

		DueDateWindowDays: 7,

		MergeThreshold:  0.8,
		ReviewThreshold: 0.65,

		AliasCacheSize: 1024,
	}
}
