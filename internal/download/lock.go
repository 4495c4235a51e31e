package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is created inside every album folder while it downloads.
const lockFileName = ".khinsider.lock"

// ErrAlbumLocked is returned when another process is already downloading
// into the same album folder.
var ErrAlbumLocked = errors.New("album folder is locked by another download")

// albumLock guards an album folder against concurrent downloads.
type albumLock struct {
	fl *flock.Flock
}

// lockAlbum takes the lock of the album folder dir without waiting.
func lockAlbum(dir string) (*albumLock, error) {
	fl := flock.New(filepath.Join(dir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlbumLocked, dir)
	}
	return &albumLock{fl: fl}, nil
}

// release unlocks and removes the lock file.
func (l *albumLock) release() error {
	if err := l.fl.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(l.fl.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
