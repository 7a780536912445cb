package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// defaultImageType is assumed when an upload carries no content type.
const defaultImageType = "image/jpeg"

// heicBrands are the ISO-BMFF major brands written by HEIC/HEIF encoders.
var heicBrands = map[string]bool{"heic": true, "heix": true, "heif": true, "mif1": true, "msf1": true}

// toPNG renders an upload as a PNG the vision models accept. PNG input is
// returned untouched; PDFs contribute their first page only.
func toPNG(data []byte, contentType string) ([]byte, error) {
	mediaType := mediaTypeOf(contentType)

	switch {
	case mediaType == "text/plain":
		return nil, errors.New("plain text cannot be rendered as an image")
	case mediaType == "application/pdf":
		img, err := renderPDF(data)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return encodePNG(img)
	case isHEICFormat(data) || strings.Contains(mediaType, "heic") || strings.Contains(mediaType, "heif"):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
		return encodePNG(img)
	case mediaType == "image/png":
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("unsupported image format %q (expected JPEG, PNG, GIF, HEIC or PDF): %w", mediaType, err)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return encodePNG(img)
}

func renderPDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// mediaTypeOf lower-cases a Content-Type header and strips its parameters.
func mediaTypeOf(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return defaultImageType
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.ToLower(contentType)
}

// isHEICFormat sniffs the ftyp box at offset 4.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	return heicBrands[string(data[8:12])]
}
