// Package zip bundles generated assets into a single downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Asset is one file to include in the archive. When MIME is set and the
// filename carries no extension, one is derived from the MIME type.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

var mimeExtensions = map[string]string{
	"image/webp": ".webp",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"audio/mpeg": ".mp3",
	"video/mp4":  ".mp4",
}

// ArchiveAssets writes the assets into an in-memory zip. Assets that cannot
// be added are skipped rather than aborting the archive.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(entryName(asset))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func entryName(asset Asset) string {
	name := asset.Filename
	if name == "" {
		name = "asset"
	}
	if strings.Contains(name, ".") {
		return name
	}
	if ext, ok := mimeExtensions[asset.MIME]; ok {
		return name + ext
	}
	return name
}
