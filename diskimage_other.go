//go:build !linux && !darwin

package diskimage

import (
	"errors"
	"os"
)

func platformSectorSizes(f *os.File) (logical, physical int64, err error) {
	return 0, 0, errors.New("diskimage: block device sector size probing not supported on this platform")
}
