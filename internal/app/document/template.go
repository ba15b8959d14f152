package document

import (
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"
)

// Funcs is the function set available to report templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"join":    join,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"default": orDefault,
	}
}

func join(v any, sep string) string {
	switch items := v.(type) {
	case []string:
		return strings.Join(items, sep)
	case []any:
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func orDefault(def string, v any) any {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if x == "" {
			return def
		}
	}
	return v
}

// Placeholders returns the top-level field names a template snippet reads,
// in order of appearance. Fields accessed inside range/with bodies refer to
// the element, not the record, and are not reported.
func Placeholders(snippet string) ([]string, error) {
	if !strings.Contains(snippet, "{{") {
		return nil, nil
	}
	t, err := template.New("snippet").Funcs(Funcs()).Parse(snippet)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	walk(t.Tree.Root, add)
	return names, nil
}

func walk(node parse.Node, add func(string)) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walk(child, add)
		}
	case *parse.ActionNode:
		walkPipe(n.Pipe, add)
	case *parse.IfNode:
		walkPipe(n.Pipe, add)
		walk(n.List, add)
		walk(n.ElseList, add)
	case *parse.RangeNode:
		walkPipe(n.Pipe, add)
		walk(n.ElseList, add)
	case *parse.WithNode:
		walkPipe(n.Pipe, add)
		walk(n.ElseList, add)
	}
}

func walkPipe(pipe *parse.PipeNode, add func(string)) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				add(a.Ident[0])
			case *parse.PipeNode:
				walkPipe(a, add)
			}
		}
	}
}
