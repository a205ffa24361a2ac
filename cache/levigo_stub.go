//go:build !levigo

package cache

import "github.com/pkg/errors"

const levigoAvailable = false

func openLevigo(path string, o *engineOptions) (engine, error) {
	return nil, errors.New("leveldb store requires a build with -tags levigo")
}
