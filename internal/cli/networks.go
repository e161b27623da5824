package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/network"
	"github.com/mrz1836/trickle/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	networksTestnet bool
	networksMainnet bool
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List known networks",
	Long: `List the built-in network profiles together with any profiles from
networks_file. A profile is selected for "trickle run" by name or by
chain id.`,
	Example: `  trickle networks
  trickle networks --testnet
  trickle networks -o json`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		list, err := listNetworks(Config(), networksTestnet, networksMainnet)
		if err != nil {
			return err
		}
		return Formatter().Print(list)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	networksCmd.Flags().BoolVar(&networksTestnet, "testnet", false, "show only test networks")
	networksCmd.Flags().BoolVar(&networksMainnet, "mainnet", false, "show only main networks")
	networksCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	networksCmd.GroupID = groupDispatch
	rootCmd.AddCommand(networksCmd)
}

// networkList is the result of the networks command.
type networkList struct {
	Networks []chain.Profile `json:"networks"`
}

func listNetworks(c *config.Config, testnet, mainnet bool) (*networkList, error) {
	catalog, err := network.Load(config.ExpandPath(c.NetworksFile))
	if err != nil {
		return nil, err
	}

	var profiles []chain.Profile
	switch {
	case testnet:
		profiles = catalog.Profiles(true)
	case mainnet:
		profiles = catalog.Profiles(false)
	default:
		profiles = catalog.All()
	}
	if profiles == nil {
		profiles = []chain.Profile{}
	}
	return &networkList{Networks: profiles}, nil
}

// RenderText implements output.TextRenderer.
func (l *networkList) RenderText(w io.Writer) error {
	t := output.NewTable("NAME", "CHAIN ID", "SYMBOL", "TESTNET", "RPC")
	t.SetAlign(1, output.AlignRight)
	for _, p := range l.Networks {
		testnet := "no"
		if p.Testnet {
			testnet = "yes"
		}
		rpc := "-"
		if p.RPCURL != "" {
			rpc = redactURL(p.RPCURL)
		}
		t.AddRow(p.Name, strconv.FormatUint(p.ChainID, 10), p.Symbol, testnet, rpc)
	}
	return t.Render(w)
}
