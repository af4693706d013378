package source

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bgrewell/disc-kit/pkg/option"
)

// DriverID identifies a registered backend.
type DriverID int

const (
	// DriverUnknown asks the registry to pick the first driver that claims a path.
	DriverUnknown DriverID = iota
	DriverBinCue
)

func (id DriverID) String() string {
	if r, ok := lookup(id); ok {
		return r.Name
	}
	if id == DriverUnknown {
		return "unknown"
	}
	return fmt.Sprintf("driver(%d)", int(id))
}

// Registration describes a backend to the registry.
type Registration struct {
	Name        string
	Description string
	// DefaultDevice is the source used when Open is given an empty path.
	DefaultDevice string
	// Claims reports whether the driver recognizes path as something it can open.
	Claims func(path string) bool
	// Open creates the backend for path.
	Open func(path string, opts ...option.OpenOption) (Driver, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[DriverID]Registration{}
)

// Register makes a backend available to Open. Registering the same id twice replaces the first entry.
func Register(id DriverID, r Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = r
}

func lookup(id DriverID) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[id]
	return r, ok
}

// Drivers returns the registered driver ids in ascending order.
func Drivers() []DriverID {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]DriverID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HaveDriver reports whether id is registered.
func HaveDriver(id DriverID) bool {
	_, ok := lookup(id)
	return ok
}

// DefaultDevice returns the default source of a driver.
func DefaultDevice(id DriverID) (string, error) {
	r, ok := lookup(id)
	if !ok {
		return "", fmt.Errorf("%v: %w", id, ErrNoDriver)
	}
	return r.DefaultDevice, nil
}

func resolve(path string, id DriverID) (DriverID, Registration, bool) {
	if id != DriverUnknown {
		r, ok := lookup(id)
		return id, r, ok
	}
	for _, candidate := range Drivers() {
		r, _ := lookup(candidate)
		if r.Claims != nil && r.Claims(path) {
			return candidate, r, true
		}
	}
	return DriverUnknown, Registration{}, false
}

// IsDevice reports whether a registered driver, or the given one, claims path.
// Paths nothing claims are treated as plain byte streams by callers.
func IsDevice(path string, id DriverID) bool {
	_, r, ok := resolve(path, id)
	return ok && r.Claims != nil && r.Claims(path)
}

// Open opens path with the given driver, or with the first driver that claims
// it when id is DriverUnknown.
func Open(path string, id DriverID, opts ...option.OpenOption) (*Disc, error) {
	o := option.Apply(opts...)

	resolved, r, ok := resolve(path, id)
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, ErrNoDriver)
	}
	if path == "" {
		path = r.DefaultDevice
	}

	d, err := r.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s with %s driver: %w", path, r.Name, err)
	}
	o.Logger.Debug("opened disc source", "path", path, "driver", r.Name)
	return New(resolved, d, o.Logger), nil
}
