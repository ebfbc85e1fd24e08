package tasklist

import (
	"strings"

	"github.com/marcus/taskpicker/internal/index"
)

// Flatten mirrors a sub-item tree as TaskContext nodes labelled
// "<symbol> [<status>] <text>". Empty segments are left out.
func Flatten(children []index.Child) []TaskContext {
	if len(children) == 0 {
		return nil
	}

	type frame struct {
		src *index.Child
		dst *TaskContext
	}

	out := make([]TaskContext, len(children))
	stack := make([]frame, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, frame{&children[i], &out[i]})
	}

	// Destination slices are allocated at full length, so pointers into them
	// stay valid while the stack is drained.
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.dst.Text = label(*f.src)
		n := len(f.src.Children)
		if n == 0 {
			continue
		}
		f.dst.Children = make([]TaskContext, n)
		for i := n - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.src.Children[i], &f.dst.Children[i]})
		}
	}
	return out
}

func label(c index.Child) string {
	parts := make([]string, 0, 3)
	if c.Symbol != "" {
		parts = append(parts, c.Symbol)
	}
	if c.Status != "" {
		parts = append(parts, "["+c.Status+"]")
	}
	parts = append(parts, c.Text)
	return strings.Join(parts, " ")
}

// FlattenText returns text followed by every descendant's text in pre-order,
// separated by single spaces.
func FlattenText(text string, children []index.Child) string {
	desc := descendantTexts(children)
	if len(desc) == 0 {
		return text
	}
	return text + " " + strings.Join(desc, " ")
}

func descendantTexts(children []index.Child) []string {
	var texts []string
	stack := make([]*index.Child, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, &children[i])
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		texts = append(texts, c.Text)
		for i := len(c.Children) - 1; i >= 0; i-- {
			stack = append(stack, &c.Children[i])
		}
	}
	return texts
}

// ContextLines renders a context tree as pre-order lines indented two
// spaces per level.
func ContextLines(nodes []TaskContext) []string {
	type frame struct {
		node  *TaskContext
		depth int
	}

	var lines []string
	stack := make([]frame, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, frame{&nodes[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lines = append(lines, strings.Repeat("  ", f.depth)+f.node.Text)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.node.Children[i], f.depth + 1})
		}
	}
	return lines
}
