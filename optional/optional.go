// Package optional provides a thin wrapper for values that are absent more
// often than SCIM's JSON encoding is willing to admit with a bare zero value.
package optional

// String represents a string that might be absent instead of empty.
type String struct {
	present bool
	value   string
}

// NewString returns a present String wrapping value.
func NewString(value string) String {
	return String{present: true, value: value}
}

// Present reports whether the string was explicitly set.
func (s String) Present() bool {
	return s.present
}

// Value returns the wrapped string, or "" if absent.
func (s String) Value() string {
	return s.value
}
