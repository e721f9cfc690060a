package parser

import (
	"bytes"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the file extensions accepted as input.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var pdfMagic = []byte("%PDF-")

// LooksLikePDF reports whether data starts with a PDF header. Leading bytes
// before the header are tolerated, as readers do, within the first KiB.
func LooksLikePDF(data []byte) bool {
	if len(data) > 1024 {
		data = data[:1024]
	}
	return bytes.Contains(data, pdfMagic)
}
