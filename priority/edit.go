package priority

import "fmt"

// Edit ops accepted by Apply.
const (
	OpPrepend = "prepend"
	OpAppend  = "append"
	OpBefore  = "before"
	OpAfter   = "after"
	OpSwap    = "swap"
	OpRemove  = "remove"
)

// Edit is a declarative form of a single Manager operation, suitable for
// configuration files.
//
//	{op: before, target: auth, items: [ratelimit]}  // Before("auth", "ratelimit")
//	{op: swap, target: metrics, items: [logging]}   // Swap("metrics", "logging")
//	{op: remove, items: [metrics, logging]}         // Remove("metrics", "logging")
type Edit struct {
	Op     string   `yaml:"op" json:"op"`
	Target string   `yaml:"target,omitempty" json:"target,omitempty"`
	Items  []string `yaml:"items,omitempty" json:"items,omitempty"`
}

// Validate checks the shape of the edit without looking at any list.
func (e Edit) Validate() error {
	switch e.Op {
	case OpPrepend, OpAppend, OpRemove:
		if e.Target != "" {
			return fmt.Errorf("%w: %s takes no target", ErrInvalidEdit, e.Op)
		}
	case OpBefore, OpAfter:
		if e.Target == "" {
			return fmt.Errorf("%w: %s requires a target", ErrInvalidEdit, e.Op)
		}
	case OpSwap:
		if e.Target == "" || len(e.Items) != 1 {
			return fmt.Errorf("%w: swap requires a target and exactly one item", ErrInvalidEdit)
		}
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
	}
	return nil
}

// Apply runs edits in order. Each edit is all-or-nothing, but edits that
// already succeeded stay applied when a later one fails.
func (m *Manager) Apply(edits ...Edit) error {
	for i, e := range edits {
		if err := m.Do(e); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, e.Op, err)
		}
	}
	return nil
}

// Do runs a single edit.
func (m *Manager) Do(e Edit) error {
	if err := e.Validate(); err != nil {
		return err
	}
	switch e.Op {
	case OpPrepend:
		m.Prepend(e.Items...)
	case OpAppend:
		m.Append(e.Items...)
	case OpBefore:
		return m.Before(e.Target, e.Items...)
	case OpAfter:
		return m.After(e.Target, e.Items...)
	case OpSwap:
		return m.Swap(e.Target, e.Items[0])
	case OpRemove:
		return m.Remove(e.Items...)
	}
	return nil
}
