package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	verbose bool
	useMock bool
)

var rootCmd = &cobra.Command{
	Use:   "llamable",
	Short: "Describe a website, get a self-contained HTML document",
	Long: `Llamable turns a natural-language request (optionally with a screenshot URL)
into a single self-contained HTML document using a hosted language model.
It enhances the prompt, generates the page, validates its structure with a
bounded retry and hardens the result for an embedded preview.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "llamable.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use the offline mock model instead of the hosted endpoint")
}
