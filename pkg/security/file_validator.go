package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lowercased file extension
	DetectedMIME string // MIME type sniffed from content
	ContentType  string // Canonical content type to store and serve
	Error        string // Error message if validation failed
}

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Magic byte signatures for resume documents
var magicBytes = map[string][]byte{
	".pdf":  {0x25, 0x50, 0x44, 0x46}, // %PDF
	".docx": {0x50, 0x4B, 0x03, 0x04}, // ZIP (PK..)
}

// Sniffed MIME types accepted per extension. DOCX often sniffs as a plain zip.
var allowedMIMETypes = map[string]map[string]bool{
	".pdf":  {mimePDF: true},
	".docx": {mimeDOCX: true, "application/zip": true},
}

var canonicalContentTypes = map[string]string{
	".pdf":  mimePDF,
	".docx": mimeDOCX,
}

// ValidateResume performs 3-layer file validation:
// 1. Extension whitelist (.pdf, .docx)
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type whitelist (application/octet-stream rejected)
func ValidateResume(filename string, data []byte) FileValidationResult {
	result := FileValidationResult{}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if _, ok := magicBytes[ext]; !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if !mimeAllowed(ext, detected) {
		result.Error = "MIME type not allowed: " + detected.String()
		return result
	}

	result.ContentType = canonicalContentTypes[ext]
	result.Valid = true
	return result
}

func mimeAllowed(ext string, detected *mimetype.MIME) bool {
	allowed := allowedMIMETypes[ext]
	for m := detected; m != nil; m = m.Parent() {
		// strip parameters such as "; charset=binary"
		base := strings.SplitN(m.String(), ";", 2)[0]
		if allowed[base] {
			return true
		}
	}
	return false
}

func validateMagicBytes(ext string, data []byte) bool {
	sig, ok := magicBytes[ext]
	if !ok || len(data) < len(sig) {
		return false
	}
	return bytes.HasPrefix(data, sig)
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if _, ok := magicBytes[ext]; !ok {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// GetAllowedExtensions returns the accepted resume extensions for error messages
func GetAllowedExtensions() []string {
	return []string{".pdf", ".docx"}
}
