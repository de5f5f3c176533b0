//go:build !linux && !darwin

package probe

import (
	"os"
	"time"
)

func creationTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
