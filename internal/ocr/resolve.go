package ocr

import "os"

// DefaultCandidates are well-known tesseract install locations tried
// before falling back to PATH resolution.
var DefaultCandidates = []string{
	`C:\Program Files\Tesseract-OCR\tesseract.exe`,
	`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`,
	`D:\Software\Tesseract-OCR\tesseract.exe`,
	"/usr/local/bin/tesseract",
	"/opt/homebrew/bin/tesseract",
}

// ResolveExecutable returns the first candidate that exists as a regular
// file, or fallback when none does.
func ResolveExecutable(candidates []string, fallback string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}
	return fallback
}
