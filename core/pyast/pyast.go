// Package pyast parses Python source with tree-sitter and extracts functions,
// classes and imports together with McCabe cyclomatic complexity.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// Module is everything extracted from one Python file.
type Module struct {
	Functions []schema.FunctionRecord
	Classes   []schema.ClassRecord
	Imports   []schema.ImportRecord
}

// decisionNodes add one to a function's complexity each time they appear.
var decisionNodes = map[string]struct{}{
	"if_statement":             {},
	"elif_clause":              {},
	"conditional_expression":   {},
	"for_statement":            {},
	"while_statement":          {},
	"except_clause":            {},
	"except_group_clause":      {},
	"boolean_operator":         {},
	"list_comprehension":       {},
	"set_comprehension":        {},
	"dictionary_comprehension": {},
	"generator_expression":     {},
	"case_clause":              {},
}

// Parse parses src and walks the resulting tree. A source that does not parse
// cleanly returns *contract.SyntaxError and no records.
func Parse(ctx context.Context, src []byte, file string) (Module, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Module{}, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Module{}, syntaxError(root, src, file)
	}

	w := &walker{src: src, file: file}
	w.visit(root, false)
	return Module{Functions: w.functions, Classes: w.classes, Imports: w.imports}, nil
}

// Check reports only whether src parses, without extracting records.
func Check(ctx context.Context, src []byte, file string) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	defer tree.Close()

	if root := tree.RootNode(); root.HasError() {
		return syntaxError(root, src, file)
	}
	return nil
}

func syntaxError(root *sitter.Node, src []byte, file string) error {
	bad := firstBadNode(root)
	if bad == nil {
		return &contract.SyntaxError{File: file, Line: 1, Message: "invalid syntax"}
	}
	line := int(bad.StartPoint().Row) + 1
	if bad.IsMissing() {
		return &contract.SyntaxError{File: file, Line: line, Message: fmt.Sprintf("expected %q", bad.Type())}
	}
	snippet := bad.Content(src)
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}
	if snippet == "" {
		return &contract.SyntaxError{File: file, Line: line, Message: "invalid syntax"}
	}
	return &contract.SyntaxError{File: file, Line: line, Message: fmt.Sprintf("invalid syntax near %q", snippet)}
}

// firstBadNode returns the first ERROR or MISSING node in document order.
func firstBadNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstBadNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

type walker struct {
	src       []byte
	file      string
	functions []schema.FunctionRecord
	classes   []schema.ClassRecord
	imports   []schema.ImportRecord
}

func (w *walker) visit(n *sitter.Node, inClass bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			w.function(child, inClass)
		case "class_definition":
			w.class(child)
		case "decorated_definition":
			def := child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				w.function(def, inClass)
			case "class_definition":
				w.class(def)
			}
		case "import_statement":
			w.importStatement(child)
		case "import_from_statement":
			w.importFrom(child)
		default:
			w.visit(child, false)
		}
	}
}

func (w *walker) function(n *sitter.Node, isMethod bool) {
	rec := schema.FunctionRecord{
		File:       w.file,
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Complexity: 1,
		IsMethod:   isMethod,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		rec.Name = name.Content(w.src)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		rec.ParameterCount = countParameters(params)
	}
	body := n.ChildByFieldName("body")
	if body != nil {
		rec.Complexity += countDecisions(body)
		rec.HasDocstring = hasDocstring(body)
	}
	w.functions = append(w.functions, rec)

	if body != nil {
		w.visit(body, false)
	}
}

func (w *walker) class(n *sitter.Node) {
	rec := schema.ClassRecord{
		File:      w.file,
		StartLine: int(n.StartPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		rec.Name = name.Content(w.src)
	}
	body := n.ChildByFieldName("body")
	if body != nil {
		rec.HasDocstring = hasDocstring(body)
		for i := 0; i < int(body.NamedChildCount()); i++ {
			stmt := body.NamedChild(i)
			if stmt.Type() == "decorated_definition" {
				stmt = stmt.ChildByFieldName("definition")
			}
			if stmt != nil && stmt.Type() == "function_definition" {
				rec.MethodCount++
			}
		}
	}
	w.classes = append(w.classes, rec)

	if body != nil {
		w.visit(body, true)
	}
}

func (w *walker) importStatement(n *sitter.Node) {
	line := int(n.StartPoint().Row) + 1
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		module := importedName(child, w.src)
		if module == "" {
			continue
		}
		w.imports = append(w.imports, schema.ImportRecord{Module: module, File: w.file, Line: line})
	}
}

func (w *walker) importFrom(n *sitter.Node) {
	rec := schema.ImportRecord{File: w.file, Line: int(n.StartPoint().Row) + 1, From: true}
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode != nil {
		rec.Module = moduleNode.Content(w.src)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		if child.Type() == "wildcard_import" {
			rec.Names = append(rec.Names, "*")
			continue
		}
		if name := importedName(child, w.src); name != "" {
			rec.Names = append(rec.Names, name)
		}
	}
	w.imports = append(w.imports, rec)
}

func importedName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "dotted_name":
		return n.Content(src)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

// countDecisions counts decision points below n without entering nested
// function or class bodies. Lambdas are part of the enclosing function.
func countDecisions(n *sitter.Node) int {
	total := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			continue
		}
		if _, ok := decisionNodes[child.Type()]; ok {
			total++
		}
		total += countDecisions(child)
	}
	return total
}

func hasDocstring(body *sitter.Node) bool {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return false
		}
		switch stmt.NamedChild(0).Type() {
		case "string", "concatenated_string":
			return true
		}
		return false
	}
	return false
}

func countParameters(params *sitter.Node) int {
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		switch params.NamedChild(i).Type() {
		case "keyword_separator", "positional_separator", "comment":
		default:
			count++
		}
	}
	return count
}
