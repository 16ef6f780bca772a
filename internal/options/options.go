// Package options holds the functional-option plumbing behind envelope.New,
// stats.NewAggregator and fzstream.NewProducer.
package options

// Option mutates a *T (or any T) during construction. A non-nil error aborts it.
type Option[T any] interface {
	apply(T) error
}

// Func is a setter usable as an Option.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	if f == nil {
		return nil
	}

	return f(target)
}

// New turns a setter that validates its input into an Option.
func New[T any](fn func(T) error) Func[T] {
	return Func[T](fn)
}

// NoError turns a setter without validation into an Option.
func NoError[T any](fn func(T)) Func[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply runs opts against target left to right. The first error is returned as is
// and the remaining options are not run. Nil entries are ignored.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
