package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"llamable/generator"
	"llamable/preview"
)

var (
	genImage   string
	genPrior   string
	genOut     string
	genHarden  bool
	genShowLog bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Generate one HTML document from a prompt and/or image URL",
	Example: `  llamable generate "clone the netflix landing page" --out netflix.html
  llamable generate --image https://example.com/shot.png --harden
  llamable generate "make the header sticky" --prior netflix.html --out netflix.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		agent, err := buildAgent(cfg, logger)
		if err != nil {
			return err
		}

		req := generator.Request{Prompt: strings.Join(args, " "), Image: genImage}
		if genPrior != "" {
			prior, err := os.ReadFile(genPrior)
			if err != nil {
				return fmt.Errorf("reading prior artifact: %w", err)
			}
			req.PriorArtifact = string(prior)
		}

		res, err := agent.Generate(cmd.Context(), req)
		if genShowLog {
			for _, s := range res.Trace.Steps() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s\n", s.TS.Format("15:04:05.000"), s.Message)
			}
		}
		if err != nil {
			return err
		}

		artifact := res.Artifact
		if genHarden {
			if artifact, err = preview.Render(artifact); err != nil {
				return err
			}
		}
		if err := writeArtifact(cmd, genOut, artifact); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), res.Summary)
		return nil
	},
}

func writeArtifact(cmd *cobra.Command, path, artifact string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), artifact)
		return err
	}
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	generateCmd.Flags().StringVar(&genImage, "image", "", "reference image URL (screenshot)")
	generateCmd.Flags().StringVar(&genPrior, "prior", "", "existing HTML document to iterate on")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "write the document to this file instead of stdout")
	generateCmd.Flags().BoolVar(&genHarden, "harden", false, "inject the preview navigation guard")
	generateCmd.Flags().BoolVar(&genShowLog, "trace", false, "print the progress trace to stderr")
	rootCmd.AddCommand(generateCmd)
}
