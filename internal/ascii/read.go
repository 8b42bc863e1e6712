package ascii

import (
	"compress/gzip"
	"os"
	"strings"
)

// Open reads an ESRI ASCII grid from the given path. Files ending in
// .gz are decompressed on the fly.
func Open(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer gz.Close()

		return Parse(gz)
	}

	return Parse(file)
}
