package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/log"
)

// MemProfiler writes a heap profile to dir every interval until done is
// closed.
func MemProfiler(dir string, interval time.Duration, done <-chan struct{}) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrap(err, "creating memprofile dir")
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			filename := filepath.Join(dir, fmt.Sprintf("memprof-%03d.pprof", i))
			if err := writeHeapProfile(filename); err != nil {
				log.Println("[warn]", err)
			}
		}
	}()
	return nil
}

func writeHeapProfile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating memprofile")
	}
	defer f.Close()
	return pprof.WriteHeapProfile(f)
}
