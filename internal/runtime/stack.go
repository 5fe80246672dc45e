package runtime

import (
	"linebasic/internal/basicerr"
)

// Stack is a LIFO with an optional depth limit (0 means unlimited).
type Stack[T any] struct {
	items []T
	max   int
}

func NewStack[T any](max int) *Stack[T] {

	return &Stack[T]{max: max}
}

func (s *Stack[T]) Push(item T) error {

	if s.max > 0 && len(s.items) >= s.max {
		return basicerr.Runtimef("%s (%d entries)", basicerr.ESTACKOVERFLOW, s.max)
	}

	s.items = append(s.items, item)

	return nil
}

func (s *Stack[T]) Pop() (T, error) {

	var zero T

	if len(s.items) == 0 {
		return zero, basicerr.New(basicerr.EmptyStack, "pop from an empty stack")
	}

	item := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]

	return item, nil
}

func (s *Stack[T]) Peek() (T, error) {

	var zero T

	if len(s.items) == 0 {
		return zero, basicerr.New(basicerr.EmptyStack, "peek at an empty stack")
	}

	return s.items[len(s.items)-1], nil
}

func (s *Stack[T]) Len() int {

	return len(s.items)
}

func (s *Stack[T]) Reset() {

	s.items = nil
}

// Queue is a FIFO.
type Queue[T any] struct {
	items []T
}

func NewQueue[T any]() *Queue[T] {

	return &Queue[T]{}
}

func (q *Queue[T]) Push(items ...T) {

	q.items = append(q.items, items...)
}

// Pop returns false once the queue has run dry.
func (q *Queue[T]) Pop() (T, bool) {

	var zero T

	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]

	return item, true
}

func (q *Queue[T]) Len() int {

	return len(q.items)
}

func (q *Queue[T]) Reset() {

	q.items = nil
}
