package config

// Validator is implemented by configuration sections that fill their
// defaults and reject unusable values after decoding.
type Validator interface {
	Validate() error
}

var _ Validator = (*DashboardConfig)(nil)
