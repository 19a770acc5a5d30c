package web

import "errors"

var (
	errMissingDependency = errors.New("web server is missing a dependency")
	errTemplates         = errors.New("failed to load page templates")
	errServe             = errors.New("web server failed")
	errBadDeviceID       = errors.New("invalid device id")
	errBadQuery          = errors.New("invalid query parameter")
)
