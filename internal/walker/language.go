package walker

import (
	"path/filepath"
	"strings"
)

// Family groups languages by how their imports are resolved.
type Family int

const (
	// FamilyNone files become graph nodes but contribute no dependency edges.
	FamilyNone Family = iota
	// FamilyStructured files are parsed into a syntax tree (JavaScript, TypeScript).
	FamilyStructured
	// FamilyTextual files are scanned line by line (Python).
	FamilyTextual
)

// sourceExtensions is the allow-list of files the scanner turns into nodes,
// mapped to their language name.
var sourceExtensions = map[string]string{
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".py":    "Python",
	".java":  "Java",
	".cpp":   "C++",
	".c":     "C",
	".h":     "C",
	".go":    "Go",
	".rs":    "Rust",
	".rb":    "Ruby",
	".php":   "PHP",
	".cs":    "C#",
	".swift": "Swift",
	".kt":    "Kotlin",
}

// IsSourceExtension reports whether ext (including the dot) is allow-listed.
// The comparison is case-sensitive, so "App.JS" is not a source file.
func IsSourceExtension(ext string) bool {
	_, ok := sourceExtensions[ext]
	return ok
}

// DetectLanguage returns the language name for filename, or "unknown".
func DetectLanguage(filename string) string {
	if lang, ok := sourceExtensions[filepath.Ext(filename)]; ok {
		return lang
	}
	return "unknown"
}

// FamilyOf returns the import-resolution family for a file extension.
func FamilyOf(ext string) Family {
	switch strings.ToLower(ext) {
	case ".js", ".jsx", ".ts", ".tsx":
		return FamilyStructured
	case ".py":
		return FamilyTextual
	default:
		return FamilyNone
	}
}
