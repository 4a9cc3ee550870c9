package utils

// OrderedSet is a set of strings that remembers first-insertion order.
// It is not safe for concurrent use.
type OrderedSet struct {
	seen   map[string]struct{}
	values []string
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (o *OrderedSet) Add(s string) bool {
	if _, exists := o.seen[s]; exists {
		return false
	}
	o.seen[s] = struct{}{}
	o.values = append(o.values, s)
	return true
}

// Contains returns true if s has been added.
func (o *OrderedSet) Contains(s string) bool {
	_, exists := o.seen[s]
	return exists
}

// Size returns the number of distinct values.
func (o *OrderedSet) Size() int {
	return len(o.values)
}

// Values returns the distinct values in first-seen order. The returned
// slice is a copy.
func (o *OrderedSet) Values() []string {
	out := make([]string, len(o.values))
	copy(out, o.values)
	return out
}
