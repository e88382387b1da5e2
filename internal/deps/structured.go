package deps

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ziadkadry99/atlas/internal/walker"
)

func languageFor(ext string) *sitter.Language {
	switch strings.ToLower(ext) {
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// resolveStructured parses a JavaScript/TypeScript file and resolves its
// relative import specifiers.
func (r *Resolver) resolveStructured(ctx context.Context, file walker.FileInfo) []string {
	content, ok := r.readSource(file)
	if !ok {
		return nil
	}

	specifiers, err := ParseImports(ctx, content, file.Ext)
	if err != nil {
		r.logger.Debug("skipping unparseable file", slog.String("file", file.RelPath), slog.Any("error", err))
		return nil
	}

	var targets []string
	for _, spec := range specifiers {
		if !strings.HasPrefix(spec, ".") {
			continue
		}
		if target, ok := r.matchRelative(file, spec); ok {
			targets = append(targets, target)
		}
	}
	return targets
}

// ParseImports returns the literal module specifiers of every import
// declaration, re-export, require() call and dynamic import() call in the
// source, in source order. Sources with syntax errors are rejected.
func ParseImports(ctx context.Context, content []byte, ext string) ([]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(languageFor(ext))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errNoTree
	}
	if root.HasError() {
		return nil, errSyntax
	}

	var specifiers []string
	collectImports(root, content, &specifiers)
	return specifiers, nil
}

func collectImports(node *sitter.Node, content []byte, out *[]string) {
	switch node.Type() {
	case "import_statement", "export_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			if s, ok := stringLiteral(src, content); ok {
				*out = append(*out, s)
			}
		}
	case "call_expression":
		if s, ok := importCallArgument(node, content); ok {
			*out = append(*out, s)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectImports(node.NamedChild(i), content, out)
	}
}

// importCallArgument extracts the literal argument of require("x") or
// import("x").
func importCallArgument(call *sitter.Node, content []byte) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch {
	case fn.Type() == "import":
	case fn.Type() == "identifier" && fn.Content(content) == "require":
	default:
		return "", false
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	return stringLiteral(args.NamedChild(0), content)
}

func stringLiteral(node *sitter.Node, content []byte) (string, bool) {
	if node.Type() != "string" {
		return "", false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string_fragment" {
			return child.Content(content), true
		}
	}
	return "", false
}
