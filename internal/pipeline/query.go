package pipeline

import (
	"strings"
	"unicode"

	"github.com/kittclouds/gokitt-search/internal/textindex"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// clauseKind distinguishes a bare word from a quoted phrase, the same
// two-clause grammar pkg/qgram/query.go's ParseQuery implements;
// reimplemented locally since query parsing itself is out of scope for
// this core (spec §1 Non-goals) and pulling in qgram's own Clause type
// would entangle this pipeline with its unrelated fuzzy q-gram engine.
type clauseKind int

const (
	wordClause clauseKind = iota
	phraseClause
)

type clause struct {
	kind clauseKind
	text string // normalized (lowercased) raw text; phrases keep internal spaces
}

// parseQuery splits q into clauses on whitespace, treating a
// double-quoted span as one multi-word phrase clause. An unclosed
// quote is treated as a plain word run, matching qgram/query.go's
// "unclosed quotes are treated as terms" behavior.
func parseQuery(q string) []clause {
	var clauses []clause
	var cur strings.Builder
	inQuote := false

	flushWord := func() {
		if cur.Len() > 0 {
			clauses = append(clauses, clause{kind: wordClause, text: strings.ToLower(cur.String())})
			cur.Reset()
		}
	}

	for _, r := range q {
		switch {
		case r == '"':
			if inQuote {
				if cur.Len() > 0 {
					clauses = append(clauses, clause{kind: phraseClause, text: strings.ToLower(cur.String())})
				}
				cur.Reset()
				inQuote = false
			} else {
				flushWord()
				inQuote = true
			}
		case unicode.IsSpace(r) && !inQuote:
			flushWord()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		for _, w := range strings.Fields(cur.String()) {
			clauses = append(clauses, clause{kind: wordClause, text: strings.ToLower(w)})
		}
		cur.Reset()
	}
	flushWord()
	return clauses
}

// buildQueryGraph turns clauses into a query graph with one term node
// per clause (spec §3/§4.3): word clauses carry their single exact
// surface form, phrase clauses carry only a Phrases entry. Prefix
// expansion (spec §3's third surface-form kind) is not done; this
// pipeline never populates Prefixes.
func buildQueryGraph(clauses []clause) (*querygraph.QueryGraph, []string) {
	qg := querygraph.New()
	terms := make([]querygraph.TermData, len(clauses))
	var words []string

	for i, c := range clauses {
		switch c.kind {
		case phraseClause:
			phraseWords := textindex.Tokenize(c.text)
			terms[i] = querygraph.TermData{Phrases: [][]string{phraseWords}}
			words = append(words, phraseWords...)
		default:
			terms[i] = querygraph.TermData{Words: []string{c.text}}
			words = append(words, c.text)
		}
	}
	qg.InsertTermChain(terms)
	return qg, words
}
