package match

import (
	"strings"

	"github.com/kinsync/kinsync/pkg/types"
)

// Context carries optional situational evidence for a resolution call.
type Context struct {
	// CreatedBy is the ID of the person who created the surrounding record
	// (e.g. the task a mention appeared in). A weak textual match against
	// this person can be rescued by the context-boost stage.
	CreatedBy string
}

// roleFamily maps a family of mention keywords to the roster roles they
// imply. Families are checked in slice order: the first family whose keyword
// appears in the mention wins, even if a later family's keyword also appears.
type roleFamily struct {
	keywords []string
	roles    []string // empty means any parent qualifies
}

var roleFamilies = []roleFamily{
	{keywords: []string{"mom", "mother", "mama", "mommy"}, roles: []string{types.RoleMother, types.RolePrimaryCaregiver}},
	{keywords: []string{"dad", "father", "papa", "daddy"}, roles: []string{types.RoleFather, types.RoleSecondaryCaregiver}},
	{keywords: []string{"parent", "guardian"}, roles: nil},
}

// Resolver resolves free-form mentions against candidate pools using a
// cascade of matching strategies ordered from cheapest/highest-confidence to
// most expensive/lowest-confidence. It is safe for concurrent use: the alias
// caches are its only mutable state and they tolerate racing writers.
type Resolver struct {
	cfg           Config
	personAliases *aliasCache
	taskAliases   *aliasCache
}

// NewResolver creates a resolver with the given configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg:           cfg,
		personAliases: newAliasCache(cfg.AliasCacheSize),
		taskAliases:   newAliasCache(cfg.AliasCacheSize),
	}
}

// normalizeMention lowercases and trims a mention for comparison and cache
// keying. No locale-aware folding beyond simple lowercasing is performed.
func normalizeMention(mention string) string {
	return strings.ToLower(strings.TrimSpace(mention))
}

// ResolvePerson resolves a mention against a pool of person candidates.
//
// Stages run in fixed priority order; the first successful stage wins:
// alias cache, exact name/email, role keyword heuristic, fuzzy name
// similarity, context boost. Candidates are scanned in pool order and the
// first qualifying candidate wins each stage, so results are deterministic
// for a given pool ordering. Candidates are never mutated.
func (r *Resolver) ResolvePerson(mention string, pool []*types.Person, rctx Context) types.PersonMatch {
	key := normalizeMention(mention)
	if key == "" {
		return types.PersonMatch{Method: types.MethodNoMatch}
	}

	// Stage 1: alias cache. Confidence stays below 1.0 because the entry is
	// a remembered inference; the pool may have changed since it was cached.
	if id, ok := r.personAliases.get(key); ok {
		if person := findPerson(pool, id); person != nil {
			return types.PersonMatch{Person: person, Confidence: r.cfg.CacheConfidence, Method: types.MethodCache}
		}
	}

	// Stage 2: exact name or email match. Name is checked before email for
	// each candidate.
	for _, person := range pool {
		if person.Name != "" && strings.ToLower(person.Name) == key {
			r.personAliases.put(key, person.ID)
			return types.PersonMatch{Person: person, Confidence: 1.0, Method: types.MethodExactName}
		}
		if person.Email != "" && strings.ToLower(person.Email) == key {
			r.personAliases.put(key, person.ID)
			return types.PersonMatch{Person: person, Confidence: 1.0, Method: types.MethodExactEmail}
		}
	}

	// Stage 3: role keyword heuristic ("Mom", "our guardian", ...).
	if person := r.matchByRole(key, pool); person != nil {
		r.personAliases.put(key, person.ID)
		return types.PersonMatch{Person: person, Confidence: r.cfg.RoleConfidence, Method: types.MethodRole}
	}

	// Stage 4: fuzzy name similarity. A strict > comparison keeps the
	// first-seen candidate on ties, preserving pool-order determinism.
	var best *types.Person
	bestSim := 0.0
	for _, person := range pool {
		sim := Similarity(key, strings.ToLower(person.Name))
		if sim > bestSim {
			best = person
			bestSim = sim
		}
	}

	if best != nil && bestSim >= r.cfg.FuzzyHighThreshold {
		r.personAliases.put(key, best.ID)
		return types.PersonMatch{Person: best, Confidence: bestSim, Method: types.MethodFuzzyHigh}
	}
	if best != nil && bestSim >= r.cfg.FuzzyMediumThreshold {
		// Medium-confidence matches are not cached; remembering uncertain
		// guesses would pollute the alias cache.
		return types.PersonMatch{Person: best, Confidence: bestSim, Method: types.MethodFuzzyMedium}
	}

	// Stage 5: context boost. A weak textual match against the record's
	// creator is rescued by situational evidence.
	if rctx.CreatedBy != "" {
		if person := findPerson(pool, rctx.CreatedBy); person != nil {
			if Similarity(key, strings.ToLower(person.Name)) >= r.cfg.ContextBoostThreshold {
				return types.PersonMatch{Person: person, Confidence: r.cfg.ContextBoostConfidence, Method: types.MethodContextBoost}
			}
		}
	}

	return types.PersonMatch{Method: types.MethodNoMatch}
}

// matchByRole returns the first parent candidate matching the first role
// family whose keyword appears in the mention, or nil. There is no keyword
// conflict resolution: "mom" beats "dad" beats "parent" by family order.
func (r *Resolver) matchByRole(key string, pool []*types.Person) *types.Person {
	for _, family := range roleFamilies {
		if !containsAny(key, family.keywords) {
			continue
		}
		for _, person := range pool {
			if !person.IsParent {
				continue
			}
			if len(family.roles) == 0 || containsString(family.roles, person.Role) {
				return person
			}
		}
		// A keyword hit with no qualifying candidate still consumes the
		// role stage; later families are not tried.
		return nil
	}
	return nil
}

// PersonAliasCount reports the number of cached person aliases. Used by the
// stats endpoint.
func (r *Resolver) PersonAliasCount() int {
	return r.personAliases.len()
}

// TaskAliasCount reports the number of cached task aliases.
func (r *Resolver) TaskAliasCount() int {
	return r.taskAliases.len()
}

func findPerson(pool []*types.Person, id string) *types.Person {
	for _, person := range pool {
		if person.ID == id {
			return person
		}
	}
	return nil
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
