package network

import "github.com/mrz1836/trickle/internal/chain"

// builtin is the default catalog of public endpoints. Operators override or
// extend it with a networks file.
//
//nolint:gochecknoglobals // Read-only catalog data
var builtin = []chain.Profile{
	// Mainnets
	{Name: "Ethereum", RPCURL: "https://ethereum-rpc.publicnode.com", ChainID: 1, Symbol: "ETH", ExplorerURL: "https://etherscan.io"},
	{Name: "Base", RPCURL: "https://mainnet.base.org", ChainID: 8453, Symbol: "ETH", ExplorerURL: "https://basescan.org"},
	{Name: "Arbitrum One", RPCURL: "https://arb1.arbitrum.io/rpc", ChainID: 42161, Symbol: "ETH", ExplorerURL: "https://arbiscan.io"},
	{Name: "Optimism", RPCURL: "https://mainnet.optimism.io", ChainID: 10, Symbol: "ETH", ExplorerURL: "https://optimistic.etherscan.io"},
	{Name: "Polygon", RPCURL: "https://polygon-rpc.com", ChainID: 137, Symbol: "POL", ExplorerURL: "https://polygonscan.com"},
	{Name: "BNB Smart Chain", RPCURL: "https://bsc-dataseed.bnbchain.org", ChainID: 56, Symbol: "BNB", ExplorerURL: "https://bscscan.com"},
	{Name: "X Layer", RPCURL: "https://rpc.xlayer.tech", ChainID: 196, Symbol: "OKB", ExplorerURL: "https://www.oklink.com/xlayer"},

	// Testnets
	{Name: "Sepolia", RPCURL: "https://ethereum-sepolia-rpc.publicnode.com", ChainID: 11155111, Symbol: "ETH", ExplorerURL: "https://sepolia.etherscan.io", Testnet: true},
	{Name: "Holesky", RPCURL: "https://ethereum-holesky-rpc.publicnode.com", ChainID: 17000, Symbol: "ETH", ExplorerURL: "https://holesky.etherscan.io", Testnet: true},
	{Name: "Base Sepolia", RPCURL: "https://sepolia.base.org", ChainID: 84532, Symbol: "ETH", ExplorerURL: "https://sepolia.basescan.org", Testnet: true},
	{Name: "Arbitrum Sepolia", RPCURL: "https://sepolia-rollup.arbitrum.io/rpc", ChainID: 421614, Symbol: "ETH", ExplorerURL: "https://sepolia.arbiscan.io", Testnet: true},
	{Name: "OP Sepolia", RPCURL: "https://sepolia.optimism.io", ChainID: 11155420, Symbol: "ETH", ExplorerURL: "https://sepolia-optimism.etherscan.io", Testnet: true},
	{Name: "Polygon Amoy", RPCURL: "https://rpc-amoy.polygon.technology", ChainID: 80002, Symbol: "POL", ExplorerURL: "https://amoy.polygonscan.com", Testnet: true},
	{Name: "BNB Testnet", RPCURL: "https://data-seed-prebsc-1-s1.bnbchain.org:8545", ChainID: 97, Symbol: "tBNB", ExplorerURL: "https://testnet.bscscan.com", Testnet: true},
}
