package agent

import (
	"fmt"
	"sort"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
)

// Registry maps oracle names to their behavior variants. It is built once at
// construction from the static profile table and is immutable afterwards;
// there is no global mutable agent table.
type Registry struct {
	behaviors map[string]Behavior
	order     []string
}

// NewRegistry constructs all thirteen variants over the given collaborators.
// Profiles outside the known set get the default Core behavior.
func NewRegistry(gw gateway.Gateway, mem core.MemoryStore, optFns ...func(o *Options)) *Registry {
	r := &Registry{behaviors: map[string]Behavior{}}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	profiles := core.DefaultProfiles()
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UnlockOrder < profiles[j].UnlockOrder })

	for _, p := range profiles {
		c := NewCore(p, gw, mem, optFns...)
		var b Behavior
		switch p.Name {
		case "Chronos":
			b = NewChronos(c)
		case "Nyx":
			var nyxFns []func(n *Nyx)
			if opts.LieProbability > 0 {
				nyxFns = append(nyxFns, WithLieProbability(opts.LieProbability))
			}
			b = NewNyx(c, nyxFns...)
		case "Proteus":
			b = NewProteus(c)
		case "Aresion":
			b = NewAresion(c)
		case "Athenaia":
			b = NewAthenaia(c)
		case "Helios":
			b = NewHelios(c)
		case "Boreas":
			b = NewBoreas(c)
		case "Gaia":
			b = NewGaia(c)
		case "Themis":
			b = NewThemis(c)
		case "Echo":
			b = NewEcho(c)
		case "Selene":
			b = NewSelene(c)
		case "DelphiX":
			b = NewDelphiX(c)
		case "Typhon":
			b = NewTyphon(c)
		default:
			b = c
		}
		r.behaviors[p.Name] = b
		r.order = append(r.order, p.Name)
	}
	return r
}

// Lookup resolves an oracle name to its behavior.
func (r *Registry) Lookup(name string) (Behavior, error) {
	b, ok := r.behaviors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownOracle, name)
	}
	return b, nil
}

// Names returns the oracle names in unlock order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of registered behaviors.
func (r *Registry) Len() int { return len(r.behaviors) }
