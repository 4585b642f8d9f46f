//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/nutri/internal/errors"
)

// openNoFollow opens path with O_NOFOLLOW|O_CLOEXEC. A symlink as the last
// component is refused with INVALID_REQUEST.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("refusing to follow symlink: " + path)
	case stderrors.Is(err, syscall.ENOENT) && flag&os.O_CREATE == 0:
		return nil, errors.NewInvalidRequest("file not found: " + path)
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: err}
}

func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return openNoFollow(path, flag, perm)
}

func openFileNoFollowRead(path string) (*os.File, error) {
	return openNoFollow(path, os.O_RDONLY, 0)
}
