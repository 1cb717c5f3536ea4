package priority

import "slices"

// Manager edits the priority list held by an Owner.
type Manager struct {
	owner Owner
}

// New binds a Manager to owner without touching its list.
func New(owner Owner) *Manager {
	return &Manager{owner: owner}
}

// WithDefaults overwrites the owner's list and returns a Manager bound to it.
// A nil defaults slice selects the built-in Defaults; a non-nil empty slice
// leaves the list empty.
func WithDefaults(owner Owner, defaults []string) *Manager {
	if defaults == nil {
		defaults = Defaults()
	}
	owner.Write(clone(defaults))
	return New(owner)
}

// WithDefaultsFrom is WithDefaults with a pluggable registry. A nil fn falls
// back to Defaults.
func WithDefaultsFrom(owner Owner, fn DefaultsFunc) *Manager {
	if fn == nil {
		fn = Defaults
	}
	return WithDefaults(owner, clone(fn()))
}

// Priority returns the owner's current list.
func (m *Manager) Priority() []string {
	return m.owner.Read()
}

// Index returns the position of the first occurrence of id.
func (m *Manager) Index(id string) (int, error) {
	return indexOf(m.owner.Read(), id, "index")
}

// Prepend puts ids, in the given order, at the front of the list.
func (m *Manager) Prepend(ids ...string) *Manager {
	if len(ids) == 0 {
		return m
	}
	m.owner.Write(append(clone(ids), m.owner.Read()...))
	return m
}

// Append puts ids, in the given order, at the end of the list.
func (m *Manager) Append(ids ...string) *Manager {
	if len(ids) == 0 {
		return m
	}
	m.owner.Write(append(m.read(), ids...))
	return m
}

// Before inserts ids immediately before the first occurrence of anchor.
func (m *Manager) Before(anchor string, ids ...string) error {
	return m.insert("before", anchor, 0, ids)
}

// After inserts ids immediately after the first occurrence of anchor.
func (m *Manager) After(anchor string, ids ...string) error {
	return m.insert("after", anchor, 1, ids)
}

func (m *Manager) insert(op, anchor string, offset int, ids []string) error {
	list := m.read()
	i, err := indexOf(list, anchor, op)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	m.owner.Write(slices.Insert(list, i+offset, ids...))
	return nil
}

// Swap exchanges the first occurrences of what and with. Swapping an
// identifier with itself changes nothing. Lists holding duplicates of either
// identifier are not supported.
func (m *Manager) Swap(what, with string) error {
	list := m.read()
	i, err := indexOf(list, what, "swap")
	if err != nil {
		return err
	}
	j, err := indexOf(list, with, "swap")
	if err != nil {
		return err
	}
	if i == j {
		return nil
	}
	list[i], list[j] = list[j], list[i]
	m.owner.Write(list)
	return nil
}

// Remove deletes the first occurrence of each id, in the order given. If any
// id is missing the list is left untouched.
func (m *Manager) Remove(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	list := m.read()
	for _, id := range ids {
		i, err := indexOf(list, id, "remove")
		if err != nil {
			return err
		}
		list = slices.Delete(list, i, i+1)
	}
	m.owner.Write(list)
	return nil
}

// read returns a private copy of the owner's list, so edits never reach an
// Owner that hands out its backing array until Write.
func (m *Manager) read() []string {
	return clone(m.owner.Read())
}

func indexOf(list []string, id, op string) (int, error) {
	i := slices.Index(list, id)
	if i < 0 {
		return -1, &NotFoundError{Op: op, ID: id}
	}
	return i, nil
}
