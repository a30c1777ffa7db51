package mapreduce

// Pair is a key-value pair. It is used for engine input, for intermediate
// pairs emitted by mappers, and (typically) for final results.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Mapper transforms one input pair into zero or more intermediate pairs.
//
// Implementations must be safe for concurrent use from multiple goroutines;
// the engine gives no synchronization around Map calls. Statelessness is the
// implementer's obligation.
type Mapper[K comparable, V any, IK comparable, IV any] interface {
	Map(key K, value V) ([]Pair[IK, IV], error)
}

// Reducer transforms one intermediate key and all values collected for it
// into zero or more results.
//
// Value order is a scheduling artifact and carries no meaning: only
// commutative, order-independent reductions (sums, counts, min/max) produce
// deterministic results. The same concurrency obligations as Mapper apply.
type Reducer[IK comparable, IV any, R any] interface {
	Reduce(key IK, values []IV) ([]R, error)
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc[K comparable, V any, IK comparable, IV any] func(key K, value V) ([]Pair[IK, IV], error)

func (f MapperFunc[K, V, IK, IV]) Map(key K, value V) ([]Pair[IK, IV], error) {
	return f(key, value)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc[IK comparable, IV any, R any] func(key IK, values []IV) ([]R, error)

func (f ReducerFunc[IK, IV, R]) Reduce(key IK, values []IV) ([]R, error) {
	return f(key, values)
}
