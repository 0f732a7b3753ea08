// Package loader converts raw sources (URLs, PDF files) into documents
// with provenance metadata for the indexing pipeline.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"techdocs/internal/port"
)

// ForSource selects the loader for a source by sniffing: http(s) scheme
// means web, a .pdf suffix means PDF, anything else is unsupported.
func ForSource(source string) (port.Loader, error) {
	s := strings.TrimSpace(source)

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return NewWebLoader(), nil
	}

	if strings.ToLower(filepath.Ext(s)) == ".pdf" {
		return NewPDFLoader(), nil
	}

	return nil, fmt.Errorf("cannot determine loader type for source %q: supported types are URLs (http/https) and PDF files (.pdf)", source)
}
