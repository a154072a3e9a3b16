package apperrors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrNoActiveProposal      = errors.New("no active proposal to modify")
	ErrDataSourceUnavailable = errors.New("staffing data source unavailable")
	ErrInvalidDemand         = errors.New("invalid demand")
)
