package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the quality used for every thumbnail JPEG
const JPEGQuality = 80

const dataURIPrefix = "data:image/jpeg;base64,"

// ErrInvalidDataURI is returned for anything that is not a base64 JPEG data URI
var ErrInvalidDataURI = errors.New("invalid jpeg data uri")

// EncodeJPEG encodes img as JPEG at JPEGQuality
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeDataURI encodes img as a JPEG data URI
func EncodeDataURI(img image.Image) (string, error) {
	data, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the JPEG bytes of a data URI produced by EncodeDataURI
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, nil
}
