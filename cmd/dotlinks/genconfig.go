package dotlinks

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotlinks/pkg/config"
	"github.com/arthur-debert/dotlinks/pkg/errors"
)

// renderExampleConfig returns the starter configuration in format.
func renderExampleConfig(format string) ([]byte, error) {
	content := config.ExampleContent()

	switch format {
	case "", "yaml", "yml":
		return []byte(content), nil
	case "toml":
		var doc map[string]interface{}
		if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "example configuration is not valid YAML")
		}
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode example configuration as TOML")
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, MsgErrUnknownFormat, format)
	}
}

func newGenConfigCmd() *cobra.Command {
	var (
		format string
		write  string
		force  bool
	)

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := renderExampleConfig(format)
			if err != nil {
				return err
			}

			if write == "" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}

			if _, err := os.Stat(write); err == nil && !force {
				return errors.Newf(errors.ErrInvalidInput, MsgErrFileExists, write).
					WithDetail("path", write)
			}
			if err := renameio.WriteFile(write, content, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrCommandFailed, "cannot write %s", write)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, write)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", MsgFlagConfigFmt)
	cmd.Flags().StringVarP(&write, "write", "w", "", MsgFlagWrite)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	return cmd
}
