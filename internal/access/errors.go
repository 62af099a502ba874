package access

import "errors"

var ErrBadSubnet = errors.New("access: bad subnet")
