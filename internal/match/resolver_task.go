package match

import (
	"strings"

	"github.com/kinsync/kinsync/pkg/types"
)

// taskScore records the best field-level similarity for a candidate during
// the fuzzy stage. Field notes which of title/description produced the
// score, kept for diagnostics.
type taskScore struct {
	task       *types.Task
	similarity float64
	field      string // "title" or "description"
}

// ResolveTask resolves a mention against a pool of task candidates.
//
// Tasks differ from people in two ways: titles and descriptions are free
// text rather than proper names, so character similarity is corroborated by
// keyword overlap; and a mention that matches nothing is a meaningful "new
// task" signal rather than a resolution failure.
func (r *Resolver) ResolveTask(mention string, pool []*types.Task, rctx Context) types.TaskMatch {
	key := normalizeMention(mention)
	if key == "" {
		return types.TaskMatch{Method: types.MethodNewTask, IsNew: true}
	}

	// Stage 1: alias cache.
	if id, ok := r.taskAliases.get(key); ok {
		if task := findTask(pool, id); task != nil {
			return types.TaskMatch{Task: task, Confidence: r.cfg.CacheConfidence, Method: types.MethodCache}
		}
	}

	// Stage 2: exact title match.
	for _, task := range pool {
		if task.Title != "" && strings.ToLower(task.Title) == key {
			r.taskAliases.put(key, task.ID)
			return types.TaskMatch{Task: task, Confidence: 1.0, Method: types.MethodExactTitle}
		}
	}

	// Stage 3: fuzzy similarity corroborated by keyword overlap. Each
	// candidate scores the better of its title and description similarity;
	// strict > keeps the first-seen candidate on ties.
	var best taskScore
	for _, task := range pool {
		titleSim := Similarity(key, strings.ToLower(task.Title))
		score := taskScore{task: task, similarity: titleSim, field: "title"}

		if task.Description != "" {
			if descSim := Similarity(key, strings.ToLower(task.Description)); descSim > titleSim {
				score.similarity = descSim
				score.field = "description"
			}
		}

		if score.similarity > best.similarity {
			best = score
		}
	}

	if best.task == nil {
		return types.TaskMatch{Method: types.MethodNewTask, IsNew: true}
	}

	// Keyword overlap is always computed against the winning candidate's
	// title, even when the description won the similarity comparison: the
	// keyword signal stays anchored to the canonical label.
	overlap := KeywordOverlap(ExtractKeywords(key), ExtractKeywords(best.task.Title))
	combined := best.similarity*r.cfg.TitleSimWeight + overlap*r.cfg.KeywordOverlapWeight

	switch {
	case combined >= r.cfg.CombinedHighThreshold:
		r.taskAliases.put(key, best.task.ID)
		return types.TaskMatch{Task: best.task, Confidence: combined, Method: types.MethodFuzzyKeywordHigh}
	case combined >= r.cfg.CombinedMediumThreshold:
		return types.TaskMatch{Task: best.task, Confidence: combined, Method: types.MethodFuzzyKeywordMedium}
	default:
		return types.TaskMatch{Method: types.MethodNewTask, IsNew: true}
	}
}

func findTask(pool []*types.Task, id string) *types.Task {
	for _, task := range pool {
		if task.ID == id {
			return task
		}
	}
	return nil
}
