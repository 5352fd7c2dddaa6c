package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/canvasfmt"
	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

var (
	inspectAST  bool
	inspectDoc  bool
	inspectMode string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "Print the syntax tree or the layout instructions of a template",
	Long: `Prints the syntax tree of a file as JSON (--ast) or the layout
instructions the printer compiles it to (--doc).
Example) canvasfmt inspect --doc templates/index.canvas`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectAST == inspectDoc {
			return &ExitError{Code: 2, Err: errors.New("exactly one of --ast or --doc is required")}
		}
		mode, err := syntax.ParseMode(inspectMode)
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		source, err := os.ReadFile(args[0])
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		return runInspect(cmd.OutOrStdout(), string(source), mode)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectAST, "ast", false, "Print the syntax tree as JSON")
	inspectCmd.Flags().BoolVar(&inspectDoc, "doc", false, "Print the layout instructions")
	inspectCmd.Flags().StringVar(&inspectMode, "mode", "tolerant", "Parse mode: tolerant, strict or completion")
}

func runInspect(w io.Writer, source string, mode syntax.Mode) error {
	d, err := canvasfmt.ParseMode(source, mode)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	if inspectAST {
		return writeJSON(w, "", dumpNode(d.Tree, d.Tree.Root))
	}
	l, err := canvasfmt.Print(d, options)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	_, err = fmt.Fprintln(w, l.Debug())
	return err
}

type astNode struct {
	Kind     string               `json:"kind"`
	Name     string               `json:"name,omitempty"`
	Start    int                  `json:"start"`
	End      int                  `json:"end"`
	Markup   string               `json:"markup,omitempty"`
	Text     string               `json:"text,omitempty"`
	Dangling bool                 `json:"dangling,omitempty"`
	Slots    map[string][]astNode `json:"slots,omitempty"`
	Body     *astNode             `json:"body,omitempty"`
}

func dumpNode(tree *ast.Tree, id ast.NodeID) astNode {
	n := tree.Node(id)
	out := astNode{
		Kind:     n.Kind.String(),
		Name:     n.Name,
		Start:    n.Position.Start,
		End:      n.Position.End,
		Markup:   n.Markup,
		Text:     n.Text,
		Dangling: n.IsDanglingOpen(),
	}
	for _, slot := range ast.Slots {
		ids := tree.List(id, slot)
		if len(ids) == 0 {
			continue
		}
		if out.Slots == nil {
			out.Slots = make(map[string][]astNode)
		}
		for _, c := range ids {
			out.Slots[slot.String()] = append(out.Slots[slot.String()], dumpNode(tree, c))
		}
	}
	if n.Body != ast.NoNode {
		body := dumpNode(tree, n.Body)
		out.Body = &body
	}
	return out
}
