package documents

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app/document"
)

// Cmd represents the documents command
var Cmd = &cobra.Command{
	Use:   "documents",
	Short: "List the document types and their required fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cli.EnvFrom(cmd.Context())
		if err != nil {
			return err
		}
		catalog, err := document.Load(env.Settings.DocumentsFile)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tTITLE\tSUBFOLDER\tREQUIRED FIELDS")
		for _, t := range catalog.Types() {
			def, err := catalog.Lookup(t.String())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Type, def.Title, def.Subfolder, strings.Join(def.Schema.Required(), ", "))
		}
		return w.Flush()
	},
}
