package pemfcapi

import "errors"

var (
	errRequestFailed   = errors.New("upstream request failed")
	errUnexpectedCode  = errors.New("unexpected upstream status")
	errMalformedBody   = errors.New("malformed upstream payload")
	errInvalidBaseURL  = errors.New("invalid base url")
	errRateLimited     = errors.New("rate limiter rejected request")
	ErrNotFound        = errors.New("upstream resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
