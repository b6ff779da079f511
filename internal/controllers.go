package internal

import "fmt"

type action struct {
	fn       ActionFunc
	required int
}

type controllerEntry struct {
	actions map[string]action
	name    string
}

func (e *controllerEntry) Action(name string, required int, fn ActionFunc) {
	if fn == nil {
		return
	}
	e.actions[name] = action{fn: fn, required: max(required, 0)}
}

// controllerRegistry is the static dispatch table built at startup.
type controllerRegistry map[string]*controllerEntry

func newControllerRegistry(controllers []Controller) (controllerRegistry, error) {
	reg := make(controllerRegistry, len(controllers))
	for _, c := range controllers {
		name := c.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: %T has an empty name", ErrInvalidController, c)
		}
		if _, ok := reg[name]; ok {
			return nil, fmt.Errorf("%w: %q registered twice", ErrInvalidController, name)
		}

		entry := &controllerEntry{name: name, actions: make(map[string]action)}
		c.Actions(entry)
		reg[name] = entry
	}
	return reg, nil
}

func (r controllerRegistry) has(name string) bool {
	_, ok := r[name]
	return ok
}

// lookup resolves controller and method. An unknown method falls back to
// defaultMethod on the same controller; the returned name is the one used.
func (r controllerRegistry) lookup(controller, method, defaultMethod string) (action, string, bool) {
	entry, ok := r[controller]
	if !ok {
		return action{}, "", false
	}
	if act, ok := entry.actions[method]; ok {
		return act, method, true
	}
	act, ok := entry.actions[defaultMethod]
	return act, defaultMethod, ok
}
