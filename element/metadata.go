package element

import (
	"strconv"
	"time"

	osm "github.com/omniscale/go-osm"
)

// Attribute names of the OSM metadata, as used by GDAL and osm2pgsql.
const (
	MetadataVersion   = "osm_version"
	MetadataTimestamp = "osm_timestamp"
	MetadataChangeset = "osm_changeset"
	MetadataUID       = "osm_uid"
	MetadataUser      = "osm_user"
)

// AddMetadata adds the version, timestamp, changeset and author of the
// primitive as tags. Unset values are skipped.
func (r *Record) AddMetadata(md *osm.Metadata) {
	if md == nil {
		return
	}
	if r.Tags == nil {
		r.Tags = make(osm.Tags)
	}
	if md.Version != 0 {
		r.Tags[MetadataVersion] = strconv.Itoa(int(md.Version))
	}
	if md.Timestamp.Unix() > 0 {
		r.Tags[MetadataTimestamp] = md.Timestamp.UTC().Format(time.RFC3339)
	}
	if md.Changeset != 0 {
		r.Tags[MetadataChangeset] = strconv.FormatInt(md.Changeset, 10)
	}
	if md.UserID != 0 {
		r.Tags[MetadataUID] = strconv.Itoa(int(md.UserID))
	}
	if md.UserName != "" {
		r.Tags[MetadataUser] = md.UserName
	}
}
