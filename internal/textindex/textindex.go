// Package textindex is the word/prefix posting-list database spec §1
// treats as an external collaborator: "a read transaction over
// term/word databases, document ID bitmaps per term condition". It is
// out of scope for the ranking core's own design, but the core needs a
// concrete instance to be exercised end to end, so this package
// provides one.
//
// Adapted from pkg/qgram/indexer.go's gram-posting-map shape
// (map[term]map[docID]metadata), narrowed from q-grams down to exact
// words (the fuzzy layer is superseded by pkg/ranking/typo's own
// matchr-based tolerance) while keeping per-document term frequency
// and length bookkeeping for BM25. Phrase lookups reuse
// pkg/qgram/query_verifier.go's pattern: build an
// github.com/petar-dambovaliev/aho-corasick automaton from the
// requested patterns and scan each candidate document's normalized
// text in one pass, rather than maintaining a separate phrase posting
// list.
package textindex

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/antzucaro/matchr"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
)

// Index is a single searchable index's word/prefix/phrase posting-list
// database. Safe for concurrent reads; writes (AddDocument) take an
// exclusive lock the way pkg/qgram/indexer.go mutates its postings
// under no concurrency guard at all — this adds one since federation
// may search the same index from several goroutines at once (spec §5).
type Index struct {
	mu sync.RWMutex

	wordDocIDs    map[string]*docids.DocIdSet
	wordPositions map[string]map[uint32][]int // word -> docID -> sorted positions
	vocabulary    []string
	vocabSet      map[string]bool

	docText     map[uint32]string // normalized, field-joined text for phrase scanning
	docLength   map[uint32]int    // total token count
	totalLength int64
	numDocs     int
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		wordDocIDs:    make(map[string]*docids.DocIdSet),
		wordPositions: make(map[string]map[uint32][]int),
		vocabSet:      make(map[string]bool),
		docText:       make(map[uint32]string),
		docLength:     make(map[uint32]int),
	}
}

// Tokenize splits text into lowercased word tokens on anything that is
// not a letter or digit, the same normalization pkg/qgram/query.go's
// NormalizeText + ParseQuery apply before indexing or matching.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// AddDocument indexes fields under docID, in sorted field-name order so
// token positions (and therefore proximity) are deterministic
// regardless of map iteration order.
func (idx *Index) AddDocument(docID uint32, fields map[string]string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var textParts []string
	pos := 0
	for _, name := range names {
		tokens := Tokenize(fields[name])
		for _, w := range tokens {
			if idx.wordDocIDs[w] == nil {
				idx.wordDocIDs[w] = docids.New()
			}
			idx.wordDocIDs[w].Add(docID)

			if idx.wordPositions[w] == nil {
				idx.wordPositions[w] = make(map[uint32][]int)
			}
			idx.wordPositions[w][docID] = append(idx.wordPositions[w][docID], pos)

			if !idx.vocabSet[w] {
				idx.vocabSet[w] = true
				idx.vocabulary = append(idx.vocabulary, w)
			}
			pos++
		}
		textParts = append(textParts, strings.Join(tokens, " "))
	}

	idx.docText[docID] = strings.Join(textParts, " \x00 ")
	idx.docLength[docID] = pos
	idx.totalLength += int64(pos)
	idx.numDocs++
}

// WordDocIDs implements part of pkg/ranking/typo.Source: the set of
// documents containing an exact word form.
func (idx *Index) WordDocIDs(_ context.Context, word string) (*docids.DocIdSet, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if d, ok := idx.wordDocIDs[word]; ok {
		return d.Clone(), nil
	}
	return docids.New(), nil
}

// ProximityDocIDs implements pkg/ranking/proximity.Source: documents
// where srcWord occurs exactly proximity word-positions before
// dstWord.
func (idx *Index) ProximityDocIDs(_ context.Context, srcWord, dstWord string, proximity int) (*docids.DocIdSet, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	srcPositions := idx.wordPositions[srcWord]
	dstPositions := idx.wordPositions[dstWord]
	out := docids.New()
	for docID, srcPos := range srcPositions {
		dstPos, ok := dstPositions[docID]
		if !ok {
			continue
		}
		if hasPairAtDistance(srcPos, dstPos, proximity) {
			out.Add(docID)
		}
	}
	return out, nil
}

// hasPairAtDistance reports whether some p in src and q in dst satisfy
// q - p == distance. Both slices are append-order (ascending, since
// AddDocument assigns strictly increasing positions).
func hasPairAtDistance(src, dst []int, distance int) bool {
	dstSet := make(map[int]bool, len(dst))
	for _, d := range dst {
		dstSet[d] = true
	}
	for _, s := range src {
		if dstSet[s+distance] {
			return true
		}
	}
	return false
}

// CandidatesAtDistance implements pkg/ranking/typo.Source: every
// vocabulary word at exactly editDistance edits from word, ordered
// alphabetically for determinism (the typo rule's MaxCandidatesPerTypo
// bounds how many of these it actually uses).
func (idx *Index) CandidatesAtDistance(_ context.Context, word string, editDistance int) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if editDistance == 0 {
		if idx.vocabSet[word] {
			return []string{word}, nil
		}
		return nil, nil
	}

	var out []string
	for _, cand := range idx.vocabulary {
		if matchr.Levenshtein(word, cand) == editDistance {
			out = append(out, cand)
		}
	}
	sort.Strings(out)
	return out, nil
}

// PhraseDocIDs returns every document whose normalized text contains
// phrase as a contiguous run of words, verified with a one-pass
// Aho-Corasick scan (pkg/qgram/query_verifier.go's pattern) rather than
// a per-candidate substring search.
func (idx *Index) PhraseDocIDs(_ context.Context, phrase []string) (*docids.DocIdSet, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := docids.New()
	if len(phrase) == 0 {
		return out, nil
	}
	// Padding pattern and text with spaces keeps a match on whole words.
	pattern := " " + strings.Join(phrase, " ") + " "
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  false,
	})
	ac := builder.Build([]string{pattern})

	for docID, text := range idx.docText {
		it := ac.IterOverlapping(" " + text + " ")
		if it.Next() != nil {
			out.Add(docID)
		}
	}
	return out, nil
}

// DocFrequency returns how many documents contain word at least once.
func (idx *Index) DocFrequency(word string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if d, ok := idx.wordDocIDs[word]; ok {
		return d.Len()
	}
	return 0
}

// TermFrequency returns how many times word occurs in docID.
func (idx *Index) TermFrequency(word string, docID uint32) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.wordPositions[word][docID])
}

// DocLength returns the total token count indexed for docID.
func (idx *Index) DocLength(docID uint32) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docLength[docID]
}

// AverageDocLength returns the mean token count across every indexed
// document, used by the BM25 length-normalization term.
func (idx *Index) AverageDocLength() float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.numDocs == 0 {
		return 0
	}
	return float64(idx.totalLength) / float64(idx.numDocs)
}

// NumDocs returns how many documents have been indexed.
func (idx *Index) NumDocs() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.numDocs
}
