// Package jsx inspects JavaScript and TypeScript sources for React components
// and hook usage.
package jsx

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/qascope/qascope/schema"
)

// Extensions are the file types the inspector understands.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs"}

var hookName = regexp.MustCompile(`^use[A-Z]\w*$`)

var componentBases = map[string]struct{}{
	"Component":           {},
	"PureComponent":       {},
	"React.Component":     {},
	"React.PureComponent": {},
}

// File is the inspection result for one source file.
type File struct {
	Path       string
	IsReact    bool
	Components []schema.ReactComponent
	Hooks      map[string]int
	Findings   []schema.Finding
}

// Inspect parses src with the grammar matching ext and collects React facts.
func Inspect(ctx context.Context, src []byte, path, ext string) (File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(languageFor(ext))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return File{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	ins := &inspector{src: src, out: File{Path: path, Hooks: map[string]int{}}}
	root := tree.RootNode()
	ins.visit(root, nil)
	return ins.out, nil
}

func languageFor(ext string) *sitter.Language {
	switch strings.ToLower(ext) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

type inspector struct {
	src []byte
	out File
}

// visit walks the tree. comp is the component whose body is being walked, if any.
func (ins *inspector) visit(n *sitter.Node, comp *schema.ReactComponent) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			if src := child.ChildByFieldName("source"); src != nil {
				module := strings.Trim(src.Content(ins.src), `"'`)
				if module == "react" || strings.HasPrefix(module, "react/") || module == "react-dom" {
					ins.out.IsReact = true
				}
			}
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			ins.out.IsReact = true
		case "function_declaration", "function_expression", "function", "generator_function_declaration":
			if name := child.ChildByFieldName("name"); name != nil && ins.isComponent(name, child) {
				ins.component(name.Content(ins.src), child)
				continue
			}
		case "variable_declarator":
			name := child.ChildByFieldName("name")
			value := child.ChildByFieldName("value")
			if name != nil && value != nil && name.Type() == "identifier" && ins.isComponent(name, value) {
				ins.component(name.Content(ins.src), value)
				continue
			}
		case "class_declaration":
			if name := child.ChildByFieldName("name"); name != nil && ins.isClassComponent(child) {
				ins.component(name.Content(ins.src), child)
				continue
			}
		case "call_expression":
			ins.call(child, comp)
		}
		ins.visit(child, comp)
	}
}

func (ins *inspector) component(name string, body *sitter.Node) {
	ins.out.IsReact = true
	comp := schema.ReactComponent{
		Name: name,
		File: ins.out.Path,
		Line: int(body.StartPoint().Row) + 1,
	}
	ins.visit(body, &comp)
	ins.out.Components = append(ins.out.Components, comp)
}

func (ins *inspector) call(n *sitter.Node, comp *schema.ReactComponent) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	callee := fn.Content(ins.src)
	line := int(n.StartPoint().Row) + 1

	if strings.HasPrefix(callee, "console.") {
		ins.out.Findings = append(ins.out.Findings, schema.Finding{
			File:        ins.out.Path,
			Line:        line,
			Description: fmt.Sprintf("remove %s statement", callee),
			Tier:        schema.LowRisk,
			Category:    schema.CategoryReact,
		})
		return
	}

	hook := strings.TrimPrefix(callee, "React.")
	if !hookName.MatchString(hook) {
		return
	}
	ins.out.IsReact = true
	ins.out.Hooks[hook]++
	if comp != nil && !slices.Contains(comp.Hooks, hook) {
		comp.Hooks = append(comp.Hooks, hook)
	}

	if hook == "useEffect" || hook == "useLayoutEffect" {
		if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() < 2 {
			ins.out.Findings = append(ins.out.Findings, schema.Finding{
				File:        ins.out.Path,
				Line:        line,
				Description: hook + " is missing a dependency array",
				Tier:        schema.MediumRisk,
				Category:    schema.CategoryReact,
			})
		}
	}
}

// isComponent reports whether name is capitalized and node renders JSX.
func (ins *inspector) isComponent(name, node *sitter.Node) bool {
	text := name.Content(ins.src)
	if text == "" || !unicode.IsUpper(rune(text[0])) {
		return false
	}
	return containsJSX(node)
}

func (ins *inspector) isClassComponent(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		heritage := strings.TrimSpace(strings.TrimPrefix(child.Content(ins.src), "extends"))
		if idx := strings.IndexAny(heritage, "< {"); idx >= 0 {
			heritage = heritage[:idx]
		}
		_, ok := componentBases[heritage]
		return ok
	}
	return false
}

func containsJSX(n *sitter.Node) bool {
	switch n.Type() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if containsJSX(n.NamedChild(i)) {
			return true
		}
	}
	return false
}
