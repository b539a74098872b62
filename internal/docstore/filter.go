package docstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kittclouds/gokitt-search/internal/apperr"
	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
)

// clause is one `field = value` equality test. Filters in this core
// are intentionally minimal (query parsing/filter-expression grammar
// is out of scope per spec §1); they cover exactly what spec §8 S8
// needs: a single boolean/equality clause, optionally chained with
// " AND ".
type clause struct {
	field string
	value string
}

// ParseFilter parses a filter expression of the form
// `field = value [AND field2 = value2 ...]`. An empty expression
// matches every document.
func ParseFilter(expr string) ([]clause, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	parts := strings.Split(expr, " AND ")
	clauses := make([]clause, 0, len(parts))
	for _, p := range parts {
		eq := strings.Index(p, "=")
		if eq < 0 {
			return nil, apperr.NewInvalidQuery(apperr.CodeInvalidFilter, fmt.Sprintf("invalid filter clause %q", strings.TrimSpace(p)))
		}
		field := strings.TrimSpace(p[:eq])
		value := strings.TrimSpace(p[eq+1:])
		if field == "" || value == "" {
			return nil, apperr.NewInvalidQuery(apperr.CodeInvalidFilter, fmt.Sprintf("invalid filter clause %q", strings.TrimSpace(p)))
		}
		clauses = append(clauses, clause{field: field, value: value})
	}
	return clauses, nil
}

// Matches reports whether doc satisfies every clause. idx validates
// that every clause's field is actually filterable.
func (idx *Index) Matches(doc *Document, clauses []clause) (bool, error) {
	for _, c := range clauses {
		if !idx.Filterable[c.field] {
			return false, apperr.NewInvalidQuery(apperr.CodeInvalidFilter, fmt.Sprintf("attribute %q is not filterable", c.field))
		}
		v, ok := doc.Fields[c.field]
		if !ok {
			return false, nil
		}
		if !equalsFilterValue(v, c.value) {
			return false, nil
		}
	}
	return true, nil
}

// FilterUniverse narrows universe down to the documents matching expr,
// parsing expr itself (spec §6.1's optional per-query "filter" field).
// An empty expr returns universe unchanged.
func (idx *Index) FilterUniverse(universe *docids.DocIdSet, expr string) (*docids.DocIdSet, error) {
	clauses, err := ParseFilter(expr)
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return universe, nil
	}

	out := docids.New()
	it := universe.Iterator()
	for it.HasNext() {
		id := it.Next()
		doc, ok := idx.Document(id)
		if !ok {
			continue
		}
		matched, err := idx.Matches(doc, clauses)
		if err != nil {
			return nil, err
		}
		if matched {
			out.Add(id)
		}
	}
	return out, nil
}

// ValidateFacets checks a query's "facets" request against the index's
// configured filterable attributes (meilisearch treats facet
// distribution as a view over filterable attributes, so the two share
// one set of names — see
// original_source/meilisearch/tests/search/multi.rs's
// search_one_query_error test). An empty facets list is always valid.
func (idx *Index) ValidateFacets(facets []string) error {
	if len(facets) == 0 {
		return nil
	}
	if len(idx.Filterable) == 0 {
		return apperr.NewInvalidQuery(apperr.CodeInvalidFacets,
			"Invalid facet distribution, this index does not have configured filterable attributes.")
	}
	for _, f := range facets {
		if !idx.Filterable[f] {
			return apperr.NewInvalidQuery(apperr.CodeInvalidFacets,
				fmt.Sprintf("Invalid facet distribution, attribute `%s` is not filterable.", f))
		}
	}
	return nil
}

// ValidateSort checks a query's "sort" request (entries of the form
// "attribute:asc"/"attribute:desc") against the index's configured
// sortable attributes, matching
// original_source/meilisearch/tests/search/multi.rs's
// federation_one_query_sort_error scenario.
func (idx *Index) ValidateSort(sort []string) error {
	if len(sort) == 0 {
		return nil
	}
	if len(idx.Sortable) == 0 {
		return apperr.NewInvalidQuery(apperr.CodeInvalidSort,
			fmt.Sprintf("Attribute `%s` is not sortable. This index does not have configured sortable attributes.", sortAttribute(sort[0])))
	}
	for _, s := range sort {
		attr := sortAttribute(s)
		if !idx.Sortable[attr] {
			return apperr.NewInvalidQuery(apperr.CodeInvalidSort,
				fmt.Sprintf("Attribute `%s` is not sortable.", attr))
		}
	}
	return nil
}

// sortAttribute strips the trailing ":asc"/":desc" direction off one
// "sort" entry, returning the bare attribute name.
func sortAttribute(entry string) string {
	if i := strings.LastIndex(entry, ":"); i >= 0 {
		return entry[:i]
	}
	return entry
}

func equalsFilterValue(v any, raw string) bool {
	switch t := v.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		return err == nil && t == b
	case string:
		return t == strings.Trim(raw, `"`)
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		return err == nil && t == f
	default:
		return false
	}
}
