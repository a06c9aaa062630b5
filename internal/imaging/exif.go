package imaging

import (
	"bytes"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
)

// CaptureInfo is the EXIF subset carried onto stored derivatives as object
// metadata. JPEG and TIFF sources usually have it; PNG and GIF rarely do.
type CaptureInfo struct {
	CameraMake  string
	CameraModel string
	Taken       time.Time
	HasTaken    bool
}

// ReadCaptureInfo extracts camera and capture-time metadata from raw image
// bytes. The imagemeta library auto-detects the container from file headers
// and reads only the metadata blocks, not the full image.
//
// Date fallback chain: DateTimeOriginal > CreateDate > ModifyDate.
func ReadCaptureInfo(raw []byte) (*CaptureInfo, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	info := &CaptureInfo{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	switch {
	case !exifData.DateTimeOriginal().IsZero():
		info.Taken = exifData.DateTimeOriginal()
		info.HasTaken = true
	case !exifData.CreateDate().IsZero():
		info.Taken = exifData.CreateDate()
		info.HasTaken = true
	case !exifData.ModifyDate().IsZero():
		info.Taken = exifData.ModifyDate()
		info.HasTaken = true
	}

	return info, nil
}

// Metadata renders the capture info as S3 object metadata key-value pairs.
// Returns nil when nothing useful was extracted.
func (c *CaptureInfo) Metadata() map[string]string {
	m := make(map[string]string)
	if c.CameraMake != "" {
		m["camera-make"] = c.CameraMake
	}
	if c.CameraModel != "" {
		m["camera-model"] = c.CameraModel
	}
	if c.HasTaken {
		m["taken-at"] = c.Taken.UTC().Format(time.RFC3339)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
