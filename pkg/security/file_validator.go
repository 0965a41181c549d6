package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// CV uploads are plain text only; anything binary is refused.
var allowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

var strictMIMETypes = map[string]bool{
	"text/plain":    true,
	"text/markdown": true,
}

// Magic prefixes of binary formats commonly renamed to .txt.
var binarySignatures = [][]byte{
	{0x25, 0x50, 0x44, 0x46},                         // %PDF
	{0x50, 0x4B, 0x03, 0x04},                         // ZIP / DOCX
	{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, // OLE / DOC
	{0x7F, 0x45, 0x4C, 0x46},                         // ELF
	{0x4D, 0x5A},                                     // PE
}

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist check
// 2. Content check (valid UTF-8, no NUL bytes, no binary signature)
// 3. MIME type whitelist (application/octet-stream REJECTED)
func ValidateFile(filename string, data []byte, detectedMIME string) FileValidationResult {
	result := FileValidationResult{
		DetectedMIME: detectedMIME,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !allowedExtensions[ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !isPlainText(data) {
		result.Error = "file content is not plain UTF-8 text"
		return result
	}

	mime := baseMIME(detectedMIME)
	if !strictMIMETypes[mime] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

func baseMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func isPlainText(data []byte) bool {
	for _, sig := range binarySignatures {
		if bytes.HasPrefix(data, sig) {
			return false
		}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if !allowedExtensions[ext] {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
