package inputs

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/trickle/internal/chain/eth"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// LoadAddresses reads the destination list at path. Every entry must be a
// valid address; mixed-case entries must carry a correct checksum.
func LoadAddresses(path string) ([]common.Address, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	entries := parseList(data)
	if len(entries) == 0 {
		return nil, trerr.WithDetails(trerr.ErrNoDestinations, map[string]string{"file": path})
	}

	out := make([]common.Address, 0, len(entries))
	for i, entry := range entries {
		addr, err := eth.ParseAddress(entry)
		if err != nil {
			return nil, trerr.WithDetails(err, map[string]string{
				"file":  path,
				"index": strconv.Itoa(i),
			})
		}
		out = append(out, addr)
	}
	return out, nil
}
