package providers

import "errors"

var (
	// ErrNoData means the provider answered but had nothing useful
	// for this query.
	ErrNoData = errors.New("provider has no data for this query")

	// ErrFailedResponse means the provider reported a failure for
	// this query in an otherwise well-formed response.
	ErrFailedResponse = errors.New("provider returned a failed response")
)
