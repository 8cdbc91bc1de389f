// Command nifinspect prints the block table and geometry statistics of a
// scene file.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/scenefile"
	"nif-optimizer/internal/tristrip"
)

func main() {
	var tree bool
	cmd := &cobra.Command{
		Use:          "nifinspect <file.yaml>...",
		Short:        "Print blocks and geometry statistics of scene files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				g, err := scenefile.Load(path)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s: version %s, %d blocks, roots %v\n", path, g.Version, g.Live(), g.Roots())
				blockTable(w, g, tree)
				geometryTable(w, g)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "only list blocks reachable from the roots")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func blockTable(w io.Writer, g *nif.Graph, reachable bool) {
	refs := g.Tree()
	if !reachable {
		refs = refs[:0:0]
		for r := nif.Ref(1); int(r) <= g.Len(); r++ {
			if g.Block(r) != nil {
				refs = append(refs, r)
			}
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ref", "Type", "Name", "Links"})
	table.SetAutoWrapText(false)
	for _, r := range refs {
		b := g.Block(r)
		name := ""
		if n, ok := b.(nif.NET); ok {
			name = n.Net().Name
		}
		var links []string
		b.Edges(func(e nif.Edge) {
			targets := e.Targets()
			if len(targets) == 0 {
				return
			}
			s := make([]string, len(targets))
			for i, t := range targets {
				s[i] = t.String()
			}
			sep := "="
			if e.Ptr {
				sep = "->"
			}
			links = append(links, e.Field+sep+strings.Join(s, ","))
		})
		table.Append([]string{r.String(), string(b.Kind()), name, strings.Join(links, " ")})
	}
	table.Render()
}

func geometryTable(w io.Writer, g *nif.Graph) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ref", "Type", "Vertices", "Triangles", "Strips", "Avg strip"})
	rows := 0
	for _, r := range g.Tree() {
		var row []string
		switch d := g.Block(r).(type) {
		case *nif.TriShapeData:
			row = []string{fmt.Sprint(len(d.Triangles)), "-", "-"}
		case *nif.TriStripsData:
			row = []string{
				fmt.Sprint(len(tristrip.Triangulate(d.Strips))),
				fmt.Sprint(len(d.Strips)),
				fmt.Sprintf("%.1f", tristrip.AverageLength(d.Strips)),
			}
		default:
			continue
		}
		gd := g.Block(r).(nif.GeomData).GeomData()
		table.Append(append([]string{r.String(), string(g.Block(r).Kind()), fmt.Sprint(len(gd.Vertices))}, row...))
		rows++
	}
	if rows > 0 {
		table.Render()
	}
}
