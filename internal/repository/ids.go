package repository

import "github.com/google/uuid"

// wellFormedID reports whether id can be bound against a UUID column. Lookups
// treat a malformed id as a miss rather than letting the driver fail on it;
// ids arriving through route parameters are already shape-checked at the
// router.
func wellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
