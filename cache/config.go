package cache

import (
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/smartdatalake/osmwrangle/log"
)

type engineOptions struct {
	CacheSizeM           int
	MaxOpenFiles         int
	BlockRestartInterval int
	WriteBufferSizeM     int
	BlockSizeK           int
	// ReadCacheSizeM is the size of the in-process read cache in front of
	// the engine. 0 disables the read cache.
	ReadCacheSizeM int
}

type geometryCacheOptions struct {
	Nodes     engineOptions
	Ways      engineOptions
	Relations engineOptions
	// AutoMaxInputM is the largest input file in MB that the auto store
	// kind keeps in memory stores.
	AutoMaxInputM int64
}

const defaultConfig = `
{
    "Nodes": {
        "CacheSizeM": 16,
        "WriteBufferSizeM": 64,
        "BlockSizeK": 0,
        "MaxOpenFiles": 64,
        "BlockRestartInterval": 128,
        "ReadCacheSizeM": 32
    },
    "Ways": {
        "CacheSizeM": 16,
        "WriteBufferSizeM": 64,
        "BlockSizeK": 0,
        "MaxOpenFiles": 64,
        "BlockRestartInterval": 128,
        "ReadCacheSizeM": 16
    },
    "Relations": {
        "CacheSizeM": 16,
        "WriteBufferSizeM": 32,
        "BlockSizeK": 0,
        "MaxOpenFiles": 64,
        "BlockRestartInterval": 128,
        "ReadCacheSizeM": 8
    },
    "AutoMaxInputM": 256
}
`

var globalCacheOptions geometryCacheOptions

func init() {
	err := json.Unmarshal([]byte(defaultConfig), &globalCacheOptions)
	if err != nil {
		panic(err)
	}

	cacheConfFile := os.Getenv("OSMWRANGLE_CACHE_CONFIG")
	if cacheConfFile != "" {
		data, err := ioutil.ReadFile(cacheConfFile)
		if err != nil {
			log.Println("[warn] Unable to read cache config:", err)
		}
		err = json.Unmarshal(data, &globalCacheOptions)
		if err != nil {
			log.Println("[warn] Unable to parse cache config:", err)
		}
	}
}

// SetReadCacheSize sets the size of the read cache of each disk store.
// Values <= 0 disable the read caches.
func SetReadCacheSize(mb int) {
	if mb < 0 {
		mb = 0
	}
	globalCacheOptions.Nodes.ReadCacheSizeM = mb
	globalCacheOptions.Ways.ReadCacheSizeM = mb
	globalCacheOptions.Relations.ReadCacheSizeM = mb
}
