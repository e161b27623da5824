package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/output"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var initForce bool

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Create the trickle home directory and write config.yaml with the
default settings. An existing file is kept unless --force is given.`,
	Example: `  trickle init
  trickle init --home ./ops/trickle --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := writeDefaultConfig(Config().Home, initForce)
		if err != nil {
			return err
		}
		output.Success(cmd.OutOrStdout(), "Configuration written to %s", path)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")

	initCmd.GroupID = groupConfig
	rootCmd.AddCommand(initCmd)
}

// writeDefaultConfig saves the defaults under home and returns the path.
func writeDefaultConfig(home string, force bool) (string, error) {
	path := config.Path(home)
	if _, err := os.Stat(path); err == nil && !force {
		return "", trerr.WithSuggestion(
			trerr.WithDetails(trerr.ErrInvalidInput, map[string]string{
				"file":   path,
				"reason": "configuration already exists",
			}),
			"pass --force to overwrite it")
	}

	if err := os.MkdirAll(home, 0o700); err != nil {
		return "", trerr.Wrap(err, "creating %s", home)
	}
	if err := config.Save(config.Defaults(), path); err != nil {
		return "", trerr.Wrap(err, "writing %s", path)
	}
	return path, nil
}
