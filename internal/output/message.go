package output

import (
	"fmt"
	"io"
	"strings"
)

// Success prints a success line.
func Success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, "✅ "+fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func Warn(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, "⚠️  "+fmt.Sprintf(format, args...))
}

// BannerInfo is shown once at startup.
type BannerInfo struct {
	Version      string
	Network      string
	ChainID      uint64
	Symbol       string
	RPCURL       string
	Accounts     int
	Destinations int
	Policy       string
	Cadence      string
}

// Banner prints the startup header with the selected network and inputs.
func Banner(w io.Writer, b BannerInfo) {
	title := "trickle " + b.Version
	rule := strings.Repeat("=", 48)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  %s\n%s\n", rule, title, rule)
	fmt.Fprintf(&sb, "  Network:      %s (chain %d, %s)\n", b.Network, b.ChainID, b.Symbol)
	fmt.Fprintf(&sb, "  RPC:          %s\n", b.RPCURL)
	fmt.Fprintf(&sb, "  Accounts:     %d\n", b.Accounts)
	fmt.Fprintf(&sb, "  Destinations: %d\n", b.Destinations)
	fmt.Fprintf(&sb, "  Policy:       %s\n", b.Policy)
	fmt.Fprintf(&sb, "  Cadence:      %s\n", b.Cadence)
	sb.WriteString(rule + "\n")
	_, _ = io.WriteString(w, sb.String())
}
