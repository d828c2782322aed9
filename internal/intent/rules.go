// Package intent resolves the final intent of an utterance by fusing the
// statistical vote, literal phrase overrides, and topical signals through an
// explicit ordered rule list.
package intent

import (
	"sort"

	"github.com/hyperjump/annai/internal/models"
)

// Context carries everything a rule predicate may inspect. Built once per
// utterance, read-only during evaluation.
type Context struct {
	Raw      string
	Folded   string
	Keywords []string
	Entities models.EntityBundle
	Signals  models.SignalSet

	// Vote is the statistical intent vote; HasVote is false when the
	// classifier artifact is absent and rules stand alone.
	Vote    models.ClassifierResult
	HasVote bool
}

// Fired is the set of rule names that matched so far.
type Fired map[string]bool

// Rule is one entry of the ordered rule list. Higher priority evaluates
// first. Vetoes name earlier rules whose match this rule cancels: the veto
// applies whenever this rule's predicate matches, even if this rule itself
// ends up outranked.
type Rule struct {
	Name       string
	Priority   int
	Intent     string
	Confidence func(ctx *Context) float64
	Applies    func(ctx *Context, fired Fired) bool
	Vetoes     []string
}

// Outcome is the result of evaluating the rule list.
type Outcome struct {
	Intent     string
	Confidence float64
	Rule       string
}

// Engine evaluates an ordered rule list with veto semantics. Precedence is
// auditable: every rule is independently testable and the winning rule's name
// is reported.
type Engine struct {
	rules []Rule
}

// NewEngine sorts the rules by descending priority and returns an engine.
func NewEngine(rules []Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Engine{rules: sorted}
}

// Evaluate runs the rules in priority order. Later (lower-priority) rules may
// veto earlier matches; after all rules ran, the surviving match with the
// highest priority wins. Returns the zero Outcome when nothing survives.
func (e *Engine) Evaluate(ctx *Context) Outcome {
	fired := make(Fired, len(e.rules))
	order := make([]string, 0, len(e.rules))

	for i := range e.rules {
		r := &e.rules[i]
		if !r.Applies(ctx, fired) {
			continue
		}
		fired[r.Name] = true
		order = append(order, r.Name)
		for _, v := range r.Vetoes {
			if fired[v] {
				delete(fired, v)
			}
		}
	}

	for _, name := range order {
		if !fired[name] {
			continue
		}
		for i := range e.rules {
			r := &e.rules[i]
			if r.Name != name {
				continue
			}
			conf := 0.0
			if r.Confidence != nil {
				conf = r.Confidence(ctx)
			}
			return Outcome{Intent: r.Intent, Confidence: conf, Rule: r.Name}
		}
	}
	return Outcome{}
}

// Rules returns the ordered rule list, for inspection and tests.
func (e *Engine) Rules() []Rule {
	return e.rules
}
