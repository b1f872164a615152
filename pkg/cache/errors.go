package cache

import (
	"errors"

	serrors "github.com/synmed/synviz/pkg/errors"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// wrap tags a backend failure with the cache error code.
func wrap(err error, op, key string) error {
	if err == nil {
		return nil
	}
	return serrors.Wrap(serrors.ErrCodeCache, err, "%s %s", op, key)
}
