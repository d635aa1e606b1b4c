package dotlinks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotlinks/pkg/explain"
	"github.com/arthur-debert/dotlinks/pkg/ui"
)

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "explain [topic]",
		Short:     MsgExplainShort,
		Long:      MsgExplainLong,
		GroupID:   "core",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: explain.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				_, _ = fmt.Fprintln(out, MsgTopicsHeader)
				for _, name := range explain.Names() {
					topic, err := explain.Get(name)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(out, MsgTopicItem, name, topic.Title)
				}
				_, _ = fmt.Fprintln(out, MsgTopicsFooter)
				return nil
			}

			topic, err := explain.Get(args[0])
			if err != nil {
				return err
			}

			content := topic.Content
			if f, ok := out.(*os.File); ok && ui.IsTerminal(f) && os.Getenv("NO_COLOR") == "" {
				content = explain.NewGlamourRenderer().Render(content)
			}
			_, err = fmt.Fprint(out, content)
			return err
		},
	}
}
