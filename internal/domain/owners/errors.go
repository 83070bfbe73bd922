package owners

import "errors"

var ErrProfileNotFound = errors.New("owner profile not found")
