package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"llamable/preview"
)

var hardenExplain bool

var hardenCmd = &cobra.Command{
	Use:   "harden <file|->",
	Short: "Inject the preview navigation guard into an HTML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		if hardenExplain {
			doc, err := preview.Index(string(raw))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tHREF\tTEXT\tACTION\tTARGET")
			for _, r := range doc.Plan() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Element.Tag, r.Element.Href, r.Element.Text, r.Action.Kind, r.Action.Target)
			}
			return tw.Flush()
		}

		out, err := preview.Render(string(raw))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	hardenCmd.Flags().BoolVar(&hardenExplain, "explain", false, "list how every link and button behaves in the preview")
	rootCmd.AddCommand(hardenCmd)
}
