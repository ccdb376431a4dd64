package tables

import "errors"

// ErrEmptyInput is returned by Cluster when it is given no tokens.
var ErrEmptyInput = errors.New("tables: no tokens to cluster")
