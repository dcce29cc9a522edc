package shapeview

import "fmt"

// defaultInstanceCapacity is the initial capacity of a new collection.
const defaultInstanceCapacity = 100

// Instances is an ordered collection of per-instance records for one shape
// kind. Removing an element shifts every later element down by one.
// Instances is not safe for concurrent use.
type Instances[T any] struct {
	list     []T
	revision uint64
}

// NewInstances returns an empty collection.
func NewInstances[T any]() *Instances[T] {
	return &Instances[T]{list: make([]T, 0, defaultInstanceCapacity)}
}

// Add appends v.
func (in *Instances[T]) Add(v T) {
	in.list = append(in.list, v)
	in.revision++
}

// Remove deletes the element at index i. Fails with ErrIndexOutOfRange
// and leaves the collection untouched when i is not in [0, Len()).
func (in *Instances[T]) Remove(i int) error {
	if i < 0 || i >= len(in.list) {
		return fmt.Errorf("remove %d of %d: %w", i, len(in.list), ErrIndexOutOfRange)
	}
	copy(in.list[i:], in.list[i+1:])
	var zero T
	in.list[len(in.list)-1] = zero
	in.list = in.list[:len(in.list)-1]
	in.revision++
	return nil
}

// Len returns the number of elements.
func (in *Instances[T]) Len() int { return len(in.list) }

// At returns the element at index i.
func (in *Instances[T]) At(i int) (T, error) {
	if i < 0 || i >= len(in.list) {
		var zero T
		return zero, fmt.Errorf("at %d of %d: %w", i, len(in.list), ErrIndexOutOfRange)
	}
	return in.list[i], nil
}

// Set replaces the element at index i.
func (in *Instances[T]) Set(i int, v T) error {
	if i < 0 || i >= len(in.list) {
		return fmt.Errorf("set %d of %d: %w", i, len(in.list), ErrIndexOutOfRange)
	}
	in.list[i] = v
	in.revision++
	return nil
}

// All returns the elements in order. The slice is owned by the collection
// and must not be modified or retained across mutations.
func (in *Instances[T]) All() []T { return in.list }

// Clear removes every element, keeping the allocated capacity.
func (in *Instances[T]) Clear() {
	if len(in.list) == 0 {
		return
	}
	clear(in.list)
	in.list = in.list[:0]
	in.revision++
}

// Revision increases on every mutation.
func (in *Instances[T]) Revision() uint64 { return in.revision }
