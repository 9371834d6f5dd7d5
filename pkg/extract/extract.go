// Package extract produces typed entity mentions from page text. Two paths
// share one output contract: a local NER model and the AI-provider analysis
// call. Both degrade to empty results instead of failing the pipeline.
package extract

import (
	"sort"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
)

// MaxInputRunes bounds the text handed to the local model. Longer pages are
// cut to this prefix for cost control.
const MaxInputRunes = 100000

// Mentions maps an entity type to the distinct surface forms seen in one
// extraction call.
type Mentions map[common.EntityType][]string

// NewMentions creates an empty mention set covering all entity types.
func NewMentions() Mentions {
	m := make(Mentions, len(common.EntityTypes))
	for _, t := range common.EntityTypes {
		m[t] = []string{}
	}
	return m
}

// Add records a surface form under the given type, collapsing whitespace
// and dropping exact repeats within the same call.
func (m Mentions) Add(entityType common.EntityType, name string) {
	name = util.CollapseWhitespace(name)
	if name == "" {
		return
	}
	for _, existing := range m[entityType] {
		if existing == name {
			return
		}
	}
	m[entityType] = append(m[entityType], name)
}

// Total counts mentions across all types.
func (m Mentions) Total() int {
	total := 0
	for _, names := range m {
		total += len(names)
	}
	return total
}

// Sorted returns the types with at least one mention in stable order.
func (m Mentions) Sorted() []common.EntityType {
	types := make([]common.EntityType, 0, len(m))
	for t, names := range m {
		if len(names) > 0 {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Result is the outcome of one extraction pass. Failed marks a degraded
// pass whose sets are empty because the extractor or provider broke; the
// caller logs and continues.
type Result struct {
	Mentions      Mentions
	Relationships []RelationshipFact
	Summary       string
	Failed        bool
}

// RelationshipFact is a relationship claim surfaced by the AI path.
type RelationshipFact struct {
	Source      string
	Target      string
	Type        string
	Description string
}

// FailedResult builds the degraded result used when extraction breaks.
func FailedResult() Result {
	return Result{Mentions: NewMentions(), Failed: true}
}
