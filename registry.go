package di

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// registry is the registration table of a single Container.
//
// Reads are lock-free. Writes are serialized by syncRoot and bump the version.
type registry struct {
	parent   *registry
	table    *xsync.MapOf[Contract, *Registration]
	enums    *xsync.MapOf[reflect.Type, enumeration]
	ctors    *xsync.MapOf[reflect.Type, []*function]
	syncRoot sync.Mutex
	seq      uint64
	version  atomic.Uint64
}

// enumeration is a cached list of registrations for a type at a given version.
type enumeration struct {
	version uint64
	regs    []*Registration
}

func newRegistry(parent *registry) *registry {
	return &registry{
		parent: parent,
		table:  xsync.NewMapOf[Contract, *Registration](),
		enums:  xsync.NewMapOf[reflect.Type, enumeration](),
		ctors:  xsync.NewMapOf[reflect.Type, []*function](),
	}
}

// register stores reg under each of the contracts.
// An existing local registration for the same contract is replaced.
func (r *registry) register(contracts []Contract, reg *Registration) {
	r.syncRoot.Lock()
	defer r.syncRoot.Unlock()

	r.seq++
	reg.seq = r.seq

	for _, contract := range contracts {
		r.table.Store(contract, reg)
	}

	r.version.Add(1)
}

// getOrRegister returns the local registration for the contract or registers a new one.
func (r *registry) getOrRegister(contract Contract, newReg func() *Registration) *Registration {
	if reg, ok := r.table.Load(contract); ok {
		return reg
	}

	r.syncRoot.Lock()
	defer r.syncRoot.Unlock()

	if reg, ok := r.table.Load(contract); ok {
		return reg
	}

	reg := newReg()
	r.seq++
	reg.seq = r.seq
	r.table.Store(contract, reg)
	r.version.Add(1)

	return reg
}

// get returns the local registration for the contract.
func (r *registry) get(contract Contract) *Registration {
	reg, _ := r.table.Load(contract)
	return reg
}

// lookup returns the nearest registration for the contract, starting with this registry
// and walking up the parents.
func (r *registry) lookup(contract Contract) *Registration {
	for s := r; s != nil; s = s.parent {
		if reg, ok := s.table.Load(contract); ok {
			return reg
		}
	}

	return nil
}

// Version is incremented every time a registration is added or replaced.
func (r *registry) Version() uint64 {
	return r.version.Load()
}

// registrationsOf returns the local registrations for type t, in registration order.
// Each entry is keyed by a distinct contract.
func (r *registry) registrationsOf(t reflect.Type) []entry {
	version := r.Version()
	if e, ok := r.enums.Load(t); ok && e.version == version {
		return toEntries(t, e.regs)
	}

	var regs []*Registration
	r.table.Range(func(contract Contract, reg *Registration) bool {
		if contract.Type == t {
			regs = append(regs, reg)
		}
		return true
	})

	slices.SortFunc(regs, func(a, b *Registration) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})

	r.enums.Store(t, enumeration{version: version, regs: regs})
	return toEntries(t, regs)
}

// entry pairs a registration with the contract it was found under.
type entry struct {
	contract Contract
	reg      *Registration
}

func toEntries(t reflect.Type, regs []*Registration) []entry {
	entries := make([]entry, 0, len(regs))
	for _, reg := range regs {
		entries = append(entries, entry{
			contract: Contract{Type: t, Name: reg.contract.Name},
			reg:      reg,
		})
	}
	return entries
}

// chainRegistrationsOf returns the registrations for type t from the whole chain.
//
// Ancestors come first. A descendant registration replaces an ancestor registration
// for the same contract in place.
func (r *registry) chainRegistrationsOf(t reflect.Type) []entry {
	var chain []*registry
	for s := r; s != nil; s = s.parent {
		chain = append(chain, s)
	}

	var result []entry
	index := make(map[Contract]int)

	for i := len(chain) - 1; i >= 0; i-- {
		for _, e := range chain[i].registrationsOf(t) {
			if pos, ok := index[e.contract]; ok {
				result[pos] = e
				continue
			}

			index[e.contract] = len(result)
			result = append(result, e)
		}
	}

	return result
}
