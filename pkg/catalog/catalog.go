// Package catalog provides the machines that layout items stand for.
//
// A catalog is an ordered list of machine records. The layout core only reads
// a machine's id and display label (see Machine.Entity); the remaining fields
// are carried for hosts that show machine details on selection.
//
// Catalogs are loaded from TOML files:
//
//	[[machine]]
//	id = "465067"
//	name = "Torno Nardini"
//	type = "Torno Convencional"
//	model = "MC220AE"
//	status = "operational"
//
// Default returns the built-in asset list used when no file is configured.
package catalog

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/placement"
)

// Status is the operating state of a machine.
type Status string

// Machine states.
const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusIdle        Status = "idle"
	StatusOffline     Status = "offline"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOperational, StatusMaintenance, StatusIdle, StatusOffline:
		return true
	}
	return false
}

// Label returns the human-readable status.
func (s Status) Label() string {
	switch s {
	case StatusOperational:
		return "Operational"
	case StatusMaintenance:
		return "Maintenance"
	case StatusIdle:
		return "Idle"
	case StatusOffline:
		return "Offline"
	default:
		return string(s)
	}
}

// Machine is one shop-floor asset.
type Machine struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Type   string `json:"type" toml:"type"`
	Model  string `json:"model,omitempty" toml:"model"`
	Status Status `json:"status" toml:"status"`
}

// DisplayLabel is the first word of the machine type, upper-cased. Machines
// without a type fall back to the upper-cased name.
func (m Machine) DisplayLabel() string {
	src := m.Type
	if strings.TrimSpace(src) == "" {
		src = m.Name
	}
	fields := strings.Fields(src)
	if len(fields) == 0 {
		return strings.ToUpper(m.ID)
	}
	return strings.ToUpper(fields[0])
}

// Entity returns the placement entity for m.
func (m Machine) Entity() placement.Entity {
	return placement.Entity{ID: m.ID, DisplayLabel: m.DisplayLabel()}
}

// Catalog is an ordered, id-indexed set of machines.
type Catalog struct {
	machines []Machine
	byID     map[string]int
}

// New builds a catalog from machines. Ids must be unique and non-empty;
// a missing status defaults to operational.
func New(machines []Machine) (*Catalog, error) {
	c := &Catalog{
		machines: make([]Machine, 0, len(machines)),
		byID:     make(map[string]int, len(machines)),
	}
	for i, m := range machines {
		if err := errors.ValidateMachineID(m.ID); err != nil {
			return nil, fmt.Errorf("machine %d: %w", i, err)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate machine id %q", m.ID)
		}
		if m.Status == "" {
			m.Status = StatusOperational
		}
		if !m.Status.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "machine %q: unknown status %q", m.ID, m.Status)
		}
		c.byID[m.ID] = len(c.machines)
		c.machines = append(c.machines, m)
	}
	return c, nil
}

// file is the on-disk TOML shape.
type file struct {
	Machines []Machine `toml:"machine"`
}

// Load reads a catalog from a TOML file.
func Load(path string) (*Catalog, error) {
	var f file
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read catalog %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "catalog %s: unknown key %q", path, undecoded[0].String())
	}
	return New(f.Machines)
}

// Get returns the machine with the given id.
func (c *Catalog) Get(id string) (Machine, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Machine{}, false
	}
	return c.machines[i], true
}

// Lookup is Get with a MACHINE_NOT_FOUND error for unknown ids.
func (c *Catalog) Lookup(id string) (Machine, error) {
	m, ok := c.Get(id)
	if !ok {
		return Machine{}, errors.New(errors.ErrCodeMachineNotFound, "machine %q not in catalog", id)
	}
	return m, nil
}

// Machines returns all machines in catalog order.
func (c *Catalog) Machines() []Machine {
	return append([]Machine(nil), c.machines...)
}

// Len returns the number of machines.
func (c *Catalog) Len() int { return len(c.machines) }

// Listing is a machine with its placement flag, as shown in the add list.
type Listing struct {
	Machine
	Placed bool `json:"placed"`
}

// List returns every machine flagged by whether placed references it.
func (c *Catalog) List(placed map[string]struct{}) []Listing {
	out := make([]Listing, len(c.machines))
	for i, m := range c.machines {
		_, ok := placed[m.ID]
		out[i] = Listing{Machine: m, Placed: ok}
	}
	return out
}

// Available returns the machines not referenced by placed, in catalog order.
func (c *Catalog) Available(placed map[string]struct{}) []Machine {
	var out []Machine
	for _, m := range c.machines {
		if _, ok := placed[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}
