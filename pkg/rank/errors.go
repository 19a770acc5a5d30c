package rank

import "errors"

var errLoadFailed = errors.New("rank load failed")
