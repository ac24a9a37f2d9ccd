package action

// Context provides the simulation state a condition is evaluated against.
// Implementations must not be mutated while an evaluation is running.
type Context interface {
	// Get returns a field level or calendar quantity such as FOPR or YEAR.
	Get(key string) (float64, bool)
	// GetEntity returns a quantity scoped to one well, group or other entity.
	GetEntity(key, entity string) (float64, bool)
	// UDQ returns the value of a user defined quantity.
	UDQ(name string) (float64, bool)
	// Wells resolves a well name, wildcard pattern, well list or well list
	// template. It reports false when pattern names an undefined well list.
	Wells(pattern string) ([]string, bool)
	// Groups resolves a group name or wildcard pattern.
	Groups(pattern string) []string
}
