package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llamable/generator"
	"llamable/preview"
)

var chatOut string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Iterate on one document interactively",
	Long: `Reads one instruction per line from stdin. Each instruction is applied to
the current document. Prefix a line with "image:<url>" to attach a screenshot.
Use /reset to start over and /quit to exit.`,
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
		sess := generator.NewSession(uuid.NewString(), agent)
		sess.OnArtifactReady = func(doc string) {
			if chatOut == "" {
				return
			}
			hardened, err := preview.Render(doc)
			if err != nil {
				logger.Warn("preview render failed", zap.Error(err))
				return
			}
			if err := writeArtifact(cmd, chatOut, hardened); err != nil {
				logger.Warn("writing preview failed", zap.Error(err))
			}
		}
		return runChat(cmd.Context(), sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runChat(ctx context.Context, sess *generator.Session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/quit":
			return nil
		case line == "/reset":
			sess.Reset()
			fmt.Fprintln(out, "session reset")
		default:
			text, image := splitImage(line)
			summary, err := sess.Submit(ctx, text, image)
			switch {
			case errors.Is(err, generator.ErrBusy):
				fmt.Fprintln(out, "busy, try again")
			case err != nil:
				fmt.Fprintf(out, "error: %v\n", err)
			default:
				fmt.Fprintln(out, summary)
				if chatOut == "" {
					fmt.Fprintln(out, sess.Artifact)
				}
			}
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

// splitImage pulls a leading "image:<url>" token off the line.
func splitImage(line string) (text, image string) {
	if !strings.HasPrefix(line, "image:") {
		return line, ""
	}
	rest := strings.TrimPrefix(line, "image:")
	image, text, _ = strings.Cut(rest, " ")
	return strings.TrimSpace(text), image
}

func init() {
	chatCmd.Flags().StringVarP(&chatOut, "out", "o", "", "write the hardened preview here after every turn")
	rootCmd.AddCommand(chatCmd)
}
