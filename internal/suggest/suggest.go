// Package suggest maps ingredient names to "use it up" dish ideas.
package suggest

import "strings"

// MaxSuggestions caps the number of dishes returned by Suggest.
const MaxSuggestions = 5

// Rule pairs a lowercase keyword with the dishes it suggests.
type Rule struct {
	Keyword string
	Dishes  []string
}

// Engine matches names against an ordered keyword table. Rules are tested
// in order, so the table order decides which dishes surface first.
type Engine struct {
	rules []Rule
	limit int
}

// NewEngine builds an engine over rules returning at most limit dishes.
func NewEngine(rules []Rule, limit int) *Engine {
	if limit <= 0 {
		limit = MaxSuggestions
	}
	return &Engine{rules: rules, limit: limit}
}

// Default is the engine over the built-in table.
var Default = NewEngine(DefaultRules, MaxSuggestions)

// Suggest returns dish ideas for the given ingredient names using Default.
func Suggest(names []string) []string {
	return Default.Suggest(names)
}

// Suggest lowercases and trims every name, collects the dishes of every rule
// whose keyword is contained in it, and returns them de-duplicated in
// first-seen order, capped at the engine limit.
func (e *Engine) Suggest(names []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, e.limit)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		for _, rule := range e.rules {
			if !strings.Contains(name, rule.Keyword) {
				continue
			}
			for _, dish := range rule.Dishes {
				if _, dup := seen[dish]; dup {
					continue
				}
				seen[dish] = struct{}{}
				out = append(out, dish)
				if len(out) == e.limit {
					return out
				}
			}
		}
	}
	return out
}
