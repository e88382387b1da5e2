package deps

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/ziadkadry99/atlas/internal/walker"
)

var (
	errNoTree = errors.New("deps: parser returned no tree")
	errSyntax = errors.New("deps: source contains syntax errors")
)

var pythonImport = regexp.MustCompile(`^(?:from|import)\s+([.\w]+)`)

// ScanPythonImports returns the module path of every line starting with an
// import or from statement.
func ScanPythonImports(content []byte) []string {
	var modules []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if m := pythonImport.FindStringSubmatch(scanner.Text()); m != nil {
			modules = append(modules, m[1])
		}
	}
	return modules
}

// resolveTextual resolves relative Python imports by looking for the first
// known path containing the module path with dots rewritten to slashes.
func (r *Resolver) resolveTextual(file walker.FileInfo) []string {
	content, ok := r.readSource(file)
	if !ok {
		return nil
	}

	var targets []string
	for _, module := range ScanPythonImports(content) {
		if !strings.HasPrefix(module, ".") {
			continue
		}
		needle := strings.ReplaceAll(module, ".", "/")
		if strings.Trim(needle, "/") == "" {
			// "from . import x" names the package itself, not a file.
			continue
		}
		for _, f := range r.files {
			if strings.Contains(f.RelPath, needle) {
				targets = append(targets, f.RelPath)
				break
			}
		}
	}
	return targets
}
