package runtime

import "fmt"

// Environment is one lexical scope of Lox bindings.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// UndefinedVariableError is returned when a name is bound nowhere on the chain.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'.", e.Name)
}

// Define inserts or overwrites a binding in the current scope. Redefinition
// is allowed; the resolver rejects it for local scopes before we get here.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return &UndefinedVariableError{Name: name}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, &UndefinedVariableError{Name: name}
}

// Ancestor walks exactly distance parents up. The resolver guarantees the
// chain is deep enough; a short chain panics.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from the scope distance levels up without walking further.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	if v, ok := e.Ancestor(distance).values[name]; ok {
		return v, nil
	}
	return nil, &UndefinedVariableError{Name: name}
}

// AssignAt writes name into the scope distance levels up.
func (e *Environment) AssignAt(distance int, name string, value Value) {
	e.Ancestor(distance).values[name] = value
}

// Extend creates a child scope for a block, call or method binding.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
