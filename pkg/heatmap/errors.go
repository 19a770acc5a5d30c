package heatmap

import "errors"

var errLoadFailed = errors.New("impact mask load failed")
