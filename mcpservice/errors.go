package mcpservice

// NotFoundError reports a lookup for a name that is not registered.
type NotFoundError struct {
	Kind Kind
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Kind.String() + " not found: " + e.Name
}

// DuplicateNameError reports a second registration under an existing name.
// It is fatal at startup.
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return "duplicate " + e.Kind.String() + " name: " + e.Name
}
