package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/trickle/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	versionCheck bool

	// releaseOptions configures the release client; tests point it at a fake API.
	releaseOptions []version.Option
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Print the version, commit and build date of this binary. With --check,
also ask GitHub for the latest release and report whether it is newer.`,
	Example: `  trickle version
  trickle version --check -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res := &versionResult{Build: buildInfo, Version: buildInfo.Current()}
		if versionCheck {
			checkLatest(cmd.Context(), res)
		}
		return Formatter().Print(res)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")

	versionCmd.GroupID = groupConfig
	rootCmd.AddCommand(versionCmd)
}

type versionResult struct {
	Build           version.BuildInfo `json:"build"`
	Version         string            `json:"version"`
	Latest          string            `json:"latest,omitempty"`
	UpdateAvailable bool              `json:"update_available"`
	ReleaseURL      string            `json:"release_url,omitempty"`
	CheckError      string            `json:"check_error,omitempty"`
}

// checkLatest fills in the release fields. A failed lookup is reported in
// the result rather than failing the command.
func checkLatest(ctx context.Context, res *versionResult) {
	ctx, cancel := context.WithTimeout(ctx, version.DefaultTimeout)
	defer cancel()

	opts := append([]version.Option{
		version.WithUserAgent("trickle/" + res.Version),
	}, releaseOptions...)

	rel, err := version.NewClient(opts...).LatestRelease(ctx, version.Owner, version.Repo)
	if err != nil {
		log := Logger()
		log.Debug().Err(err).Msg("release check failed")
		res.CheckError = err.Error()
		return
	}
	res.Latest = rel.TagName
	res.ReleaseURL = rel.HTMLURL
	res.UpdateAvailable = version.IsNewer(res.Version, rel.TagName)
}

// RenderText implements output.TextRenderer.
func (r *versionResult) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "trickle %s\n", r.Build.String()); err != nil {
		return err
	}
	switch {
	case r.CheckError != "":
		_, err := fmt.Fprintf(w, "Could not check for updates: %s\n", r.CheckError)
		return err
	case r.UpdateAvailable:
		_, err := fmt.Fprintf(w, "A newer release is available: %s\n  %s\n", r.Latest, r.ReleaseURL)
		return err
	case r.Latest != "":
		_, err := fmt.Fprintln(w, "You are running the latest release.")
		return err
	}
	return nil
}
