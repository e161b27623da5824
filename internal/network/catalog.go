// Package network resolves the target network profile from the built-in
// catalog and an optional operator-supplied networks file.
package network

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/trickle/internal/chain"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// maxSuggestDistance is the largest edit distance offered as "did you mean".
const maxSuggestDistance = 3

// Catalog is an ordered set of network profiles keyed by normalized name.
type Catalog struct {
	profiles []chain.Profile
}

// File is the on-disk layout of a networks file.
type File struct {
	Networks []chain.Profile `yaml:"networks"`
}

// Builtin returns a catalog holding the built-in profiles.
func Builtin() *Catalog {
	return &Catalog{profiles: slices.Clone(builtin)}
}

// Load returns the built-in catalog merged with the networks file at path.
// An empty path returns the built-ins unchanged.
func Load(path string) (*Catalog, error) {
	c := Builtin()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, trerr.WithDetails(trerr.ErrConfigNotFound, map[string]string{"file": path})
	}
	if err != nil {
		return nil, trerr.Wrap(err, "reading networks file")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, trerr.WithDetails(trerr.ErrConfigInvalid, map[string]string{
			"file":   path,
			"reason": err.Error(),
		})
	}

	for i, p := range f.Networks {
		if err := validate(p); err != nil {
			return nil, trerr.WithDetails(err, map[string]string{
				"file":  path,
				"index": strconv.Itoa(i),
			})
		}
		c.Add(p)
	}
	return c, nil
}

func validate(p chain.Profile) error {
	reason := ""
	switch {
	case strings.TrimSpace(p.Name) == "":
		reason = "name is required"
	case p.ChainID == 0:
		reason = "chain_id is required"
	case p.RPCURL == "":
		reason = "rpc_url is required"
	}
	if reason != "" {
		return trerr.WithDetails(trerr.ErrConfigInvalid, map[string]string{"reason": reason})
	}
	return nil
}

// Add inserts p, replacing any profile with the same normalized name.
func (c *Catalog) Add(p chain.Profile) {
	if p.Symbol == "" {
		p.Symbol = "ETH"
	}
	key := normalize(p.Name)
	for i := range c.profiles {
		if normalize(c.profiles[i].Name) == key {
			c.profiles[i] = p
			return
		}
	}
	c.profiles = append(c.profiles, p)
}

// Profiles returns the catalog filtered by network type, in catalog order.
func (c *Catalog) Profiles(testnet bool) []chain.Profile {
	var out []chain.Profile
	for _, p := range c.profiles {
		if p.Testnet == testnet {
			out = append(out, p)
		}
	}
	return out
}

// All returns every profile in catalog order.
func (c *Catalog) All() []chain.Profile {
	return slices.Clone(c.profiles)
}

// Lookup finds a profile by name (case, space and dash insensitive) or by
// decimal chain id. Unknown names carry a "did you mean" suggestion when a
// close match exists.
func (c *Catalog) Lookup(nameOrID string) (chain.Profile, error) {
	query := strings.TrimSpace(nameOrID)

	if id, err := strconv.ParseUint(query, 10, 64); err == nil {
		for _, p := range c.profiles {
			if p.ChainID == id {
				return p, nil
			}
		}
		return chain.Profile{}, trerr.WithDetails(trerr.ErrUnknownNetwork, map[string]string{"chain_id": query})
	}

	key := normalize(query)
	for _, p := range c.profiles {
		if normalize(p.Name) == key {
			return p, nil
		}
	}

	err := trerr.WithDetails(trerr.ErrUnknownNetwork, map[string]string{"network": query})
	if s := c.suggest(key); s != "" {
		return chain.Profile{}, trerr.WithSuggestion(err, "did you mean "+s+"?")
	}
	return chain.Profile{}, trerr.WithSuggestion(err, "run 'trickle networks' to list known networks")
}

func (c *Catalog) suggest(key string) string {
	minDist := math.MaxInt
	var suggestion string
	for _, p := range c.profiles {
		dist := levenshtein.ComputeDistance(key, normalize(p.Name))
		if dist < minDist {
			minDist = dist
			suggestion = p.Name
		}
	}
	if minDist <= maxSuggestDistance {
		return suggestion
	}
	return ""
}

func normalize(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}
