// Package sniffer identifies product image formats from their leading bytes.
package sniffer

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/textproto"
	"strings"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
	FormatAVIF Format = "avif"
	FormatSVG  Format = "svg"
)

// HeadSize is the number of leading bytes DetectHead needs.
const HeadSize = 512

var ErrUnsupportedFormat = errors.New("unsupported image format")

type Result struct {
	Format Format
	MIME   string
}

// Ext is the file extension used for stored objects.
func (r Result) Ext() string {
	if r.Format == FormatJPEG {
		return "jpg"
	}
	return string(r.Format)
}

// Detect reads up to HeadSize bytes from r and returns them with the result.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	switch {
	case len(head) == 0:
		return Result{}, ErrUnsupportedFormat
	case isJPEG(head):
		return Result{Format: FormatJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Format: FormatPNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Format: FormatGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Format: FormatWEBP, MIME: "image/webp"}, nil
	case isAVIF(head):
		return Result{Format: FormatAVIF, MIME: "image/avif"}, nil
	case isSVG(head):
		return Result{Format: FormatSVG, MIME: "image/svg+xml"}, nil
	}
	return Result{}, ErrUnsupportedFormat
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

func isPNG(head []byte) bool {
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	if len(head) < 12 {
		return false
	}
	return string(head[4:8]) == "ftyp" && bytes.Contains(head[8:], []byte("avif"))
}

// isSVG accepts a bare <svg root or an XML prolog followed by one within the head.
func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg")
}

// DeclaredType returns the media type a multipart part claims, without parameters.
func DeclaredType(header textproto.MIMEHeader) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return mediaType
}

// Compatible reports whether a declared type agrees with the sniffed one.
// Generic declarations are accepted.
func Compatible(declared string, result Result) bool {
	switch declared {
	case "", "application/octet-stream":
		return true
	case "image/jpg", "image/pjpeg":
		return result.Format == FormatJPEG
	}
	return declared == result.MIME
}
