package base

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

// WriteFileAtomic writes a file through render and publishes it at path only
// once render and the final sync succeed. The temporary file lives in the
// target directory so the rename does not cross filesystems.
func WriteFileAtomic(path string, render func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to create temporary output file").
			WithDetail("path", path)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = render(tmp); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write output").WithDetail("path", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to flush output").WithDetail("path", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to close output").WithDetail("path", path)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to set output permissions").WithDetail("path", path)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to publish output").WithDetail("path", path)
	}
	return nil
}
