package chart

import "errors"

var (
	errEmptySeries   = errors.New("series has no samples")
	errRefreshFailed = errors.New("chart refresh failed")
)
