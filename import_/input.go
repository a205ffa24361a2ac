package import_

import (
	"os"
	"time"

	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"
)

// inputTimestamp returns the replication timestamp of the PBF header, or
// the modification time of the file if the header has none.
func inputTimestamp(filename string) (time.Time, error) {
	f, err := os.Open(filename)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "opening PBF file")
	}
	defer f.Close()

	pbfparser := pbf.New(f, pbf.Config{})
	header, err := pbfparser.Header()
	if err == nil && header.Time.Unix() > 0 {
		return header.Time, nil
	}

	fstat, err := f.Stat()
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "reading mod time from %q", filename)
	}
	return fstat.ModTime(), nil
}
