// Command sqllint enforces the SQL audit-marker convention: every package
// level string constant containing SQL must start with a `--sql <uuid>` line,
// and no marker may be reused, since the SQL runner logs statements by marker.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeyword  = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	markerLine  = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	skipDirName = func(name string) bool {
		return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor"
	}
)

type finding struct {
	pos     token.Position
	name    string
	message string
}

func main() {
	flag.Parse()
	roots := flag.Args()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	seen := make(map[string]token.Position)
	var findings []finding

	for _, root := range roots {
		if err := lintRoot(root, seen, &findings); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "sqllint: marker violations")
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "  %s:%d %s (%s)\n", f.pos.Filename, f.pos.Line, f.message, f.name)
	}
	os.Exit(1)
}

func lintRoot(root string, seen map[string]token.Position, findings *[]finding) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return lintFile(root, seen, findings)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirName(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		return lintFile(path, seen, findings)
	})
}

func lintFile(path string, seen map[string]token.Position, findings *[]finding) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return err
	}

	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw, err := unquote(lit.Value)
			if err != nil || !sqlKeyword.MatchString(raw) {
				continue
			}
			pos := fset.Position(lit.Pos())
			name := specName(spec)

			marker := firstLine(raw)
			if !markerLine.MatchString(marker) {
				*findings = append(*findings, finding{pos: pos, name: name,
					message: "missing or invalid --sql <uuid> marker"})
				continue
			}
			if prev, dup := seen[marker]; dup {
				*findings = append(*findings, finding{pos: pos, name: name,
					message: fmt.Sprintf("marker reused, first seen at %s:%d", prev.Filename, prev.Line)})
				continue
			}
			seen[marker] = pos
		}
		return true
	})
	return nil
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) > 1 && v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func specName(spec *ast.ValueSpec) string {
	parts := make([]string, 0, len(spec.Names))
	for _, ident := range spec.Names {
		if ident != nil {
			parts = append(parts, ident.Name)
		}
	}
	return strings.Join(parts, ",")
}
