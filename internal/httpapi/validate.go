package httpapi

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/kittclouds/gokitt-search/internal/apperr"
)

// indexUIDPattern is spec §6.1's required shape for SearchQuery.indexUid.
var indexUIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = validator.New()

// validateQuery checks one queries[i] entry against spec §6.1, returning
// an *apperr.AppError carrying the HTTP error code the invalid field
// maps to.
func validateQuery(q searchQuery) error {
	if q.IndexUID == "" {
		return apperr.NewInvalidQuery(apperr.CodeMissingIndexUID, "`indexUid` is required")
	}
	if !indexUIDPattern.MatchString(q.IndexUID) {
		return apperr.NewInvalidQuery(apperr.CodeInvalidIndexUID, "`indexUid` must match ^[A-Za-z0-9_-]+$, got "+q.IndexUID)
	}
	if err := validate.Struct(q); err != nil {
		return apperr.NewInvalidQuery(apperr.CodeBadRequest, err.Error())
	}
	return nil
}
