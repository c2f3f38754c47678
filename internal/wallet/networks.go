package wallet

import (
	"sort"

	"github.com/gagliardetto/solana-go/rpc"
)

// Currency describes a network's native coin.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Network is the parameter set sent with MethodAddChain.
type Network struct {
	ChainID        string   `json:"chainId"`
	Name           string   `json:"chainName"`
	RPCURLs        []string `json:"rpcUrls"`
	WSURLs         []string `json:"wsUrls,omitempty"`
	ExplorerURL    string   `json:"blockExplorerUrl,omitempty"`
	NativeCurrency Currency `json:"nativeCurrency"`
}

var sol = Currency{Name: "Solana", Symbol: "SOL", Decimals: 9}

func fromCluster(c rpc.Cluster, name, explorer string) Network {
	return Network{
		ChainID:        c.Name,
		Name:           name,
		RPCURLs:        []string{c.RPC},
		WSURLs:         []string{c.WS},
		ExplorerURL:    explorer,
		NativeCurrency: sol,
	}
}

var networks = map[string]Network{
	rpc.MainNetBeta.Name: fromCluster(rpc.MainNetBeta, "Solana Mainnet Beta", "https://explorer.solana.com"),
	rpc.DevNet.Name:      fromCluster(rpc.DevNet, "Solana Devnet", "https://explorer.solana.com/?cluster=devnet"),
	rpc.TestNet.Name:     fromCluster(rpc.TestNet, "Solana Testnet", "https://explorer.solana.com/?cluster=testnet"),
	rpc.LocalNet.Name:    fromCluster(rpc.LocalNet, "Solana Localnet", ""),
}

// LookupNetwork returns the known parameters for chainID.
func LookupNetwork(chainID string) (Network, bool) {
	n, ok := networks[chainID]
	if !ok {
		return Network{}, false
	}
	n.RPCURLs = append([]string(nil), n.RPCURLs...)
	n.WSURLs = append([]string(nil), n.WSURLs...)
	return n, true
}

// Networks lists the known networks ordered by chain id.
func Networks() []Network {
	out := make([]Network, 0, len(networks))
	for id := range networks {
		n, _ := LookupNetwork(id)
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// decimalsFor returns the native decimals of chainID, defaulting to SOL's.
func decimalsFor(chainID string) int {
	if n, ok := networks[chainID]; ok {
		return n.NativeCurrency.Decimals
	}
	return sol.Decimals
}
