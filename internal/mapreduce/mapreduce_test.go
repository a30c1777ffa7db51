package mapreduce

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalsRain408/determine-numbers-of-flights/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("ERROR", io.Discard)
}

func newCountEngine(t *testing.T, numMappers, numReducers int) *Engine[string, int, string, int, Pair[string, int]] {
	t.Helper()
	e, err := New[string, int, string, int, Pair[string, int]](numMappers, numReducers, testLogger())
	require.NoError(t, err)
	return e
}

// identityMapper emits each input pair unchanged.
var identityMapper = MapperFunc[string, int, string, int](func(key string, value int) ([]Pair[string, int], error) {
	return []Pair[string, int]{{Key: key, Value: value}}, nil
})

// sumReducer emits one pair with the total of all values for the key.
var sumReducer = ReducerFunc[string, int, Pair[string, int]](func(key string, values []int) ([]Pair[string, int], error) {
	total := 0
	for _, v := range values {
		total += v
	}
	return []Pair[string, int]{{Key: key, Value: total}}, nil
})

func resultMap(t *testing.T, results []Pair[string, int]) map[string]int {
	t.Helper()
	m := make(map[string]int, len(results))
	for _, r := range results {
		_, dup := m[r.Key]
		require.False(t, dup, "key %q appeared twice in results", r.Key)
		m[r.Key] = r.Value
	}
	return m
}

func TestRunCountsPerKey(t *testing.T) {
	input := []Pair[string, int]{
		{Key: "f1", Value: 1},
		{Key: "f2", Value: 1},
		{Key: "f3", Value: 1},
		{Key: "f4", Value: 1},
		{Key: "f5", Value: 1},
	}
	mapper := MapperFunc[string, int, string, int](func(key string, value int) ([]Pair[string, int], error) {
		// first three inputs belong to P1, the rest to P2
		if key < "f4" {
			return []Pair[string, int]{{Key: "P1", Value: 1}}, nil
		}
		return []Pair[string, int]{{Key: "P2", Value: 1}}, nil
	})

	for _, pools := range [][2]int{{1, 1}, {2, 2}, {8, 4}} {
		e := newCountEngine(t, pools[0], pools[1])
		results, stats := e.Run(input, mapper, sumReducer)

		assert.Equal(t, map[string]int{"P1": 3, "P2": 2}, resultMap(t, results),
			"pools %v", pools)
		assert.Equal(t, 5, stats.MapTasks)
		assert.Equal(t, 2, stats.DistinctKeys)
		assert.Zero(t, stats.DroppedMaps)
		assert.Zero(t, stats.DroppedReduces)
	}
}

func TestRunDeterministicAcrossPoolSizes(t *testing.T) {
	var input []Pair[string, int]
	for i := 0; i < 200; i++ {
		input = append(input, Pair[string, int]{Key: fmt.Sprintf("k%d", i%13), Value: 1})
	}

	small := newCountEngine(t, 1, 1)
	large := newCountEngine(t, 8, 4)

	smallResults, _ := small.Run(input, identityMapper, sumReducer)
	largeResults, _ := large.Run(input, identityMapper, sumReducer)

	assert.Equal(t, resultMap(t, smallResults), resultMap(t, largeResults))
}

func TestRunCountConservation(t *testing.T) {
	var input []Pair[string, int]
	for i := 0; i < 100; i++ {
		input = append(input, Pair[string, int]{Key: "SAME", Value: 1})
	}

	e := newCountEngine(t, 6, 3)
	results, stats := e.Run(input, identityMapper, sumReducer)

	require.Len(t, results, 1)
	assert.Equal(t, "SAME", results[0].Key)
	assert.Equal(t, 100, results[0].Value)
	assert.Equal(t, 1, stats.DistinctKeys)
}

func TestRunNoKeyLoss(t *testing.T) {
	var input []Pair[string, int]
	for i := 0; i < 500; i++ {
		input = append(input, Pair[string, int]{Key: fmt.Sprintf("key-%d", i), Value: i})
	}

	e := newCountEngine(t, 8, 8)
	results, stats := e.Run(input, identityMapper, sumReducer)

	m := resultMap(t, results)
	assert.Len(t, m, 500)
	assert.Equal(t, 500, stats.DistinctKeys)
	for i := 0; i < 500; i++ {
		assert.Contains(t, m, fmt.Sprintf("key-%d", i))
	}
}

func TestRunStateIsolationAcrossRuns(t *testing.T) {
	e := newCountEngine(t, 2, 2)

	first, _ := e.Run([]Pair[string, int]{{Key: "only-in-first", Value: 1}}, identityMapper, sumReducer)
	require.Contains(t, resultMap(t, first), "only-in-first")

	second, _ := e.Run([]Pair[string, int]{{Key: "only-in-second", Value: 1}}, identityMapper, sumReducer)
	m := resultMap(t, second)
	assert.NotContains(t, m, "only-in-first")
	assert.Contains(t, m, "only-in-second")
}

func TestRunEmptyInput(t *testing.T) {
	e := newCountEngine(t, 4, 2)
	results, stats := e.Run(nil, identityMapper, sumReducer)

	assert.Empty(t, results)
	assert.Zero(t, stats.MapTasks)
	assert.Zero(t, stats.DistinctKeys)
	assert.Equal(t, PhaseDone, e.Phase())
}

func TestNewRejectsZeroPools(t *testing.T) {
	_, err := New[string, int, string, int, Pair[string, int]](0, 2, testLogger())
	assert.Error(t, err)

	_, err = New[string, int, string, int, Pair[string, int]](2, 0, testLogger())
	assert.Error(t, err)

	_, err = New[string, int, string, int, Pair[string, int]](-1, -1, testLogger())
	assert.Error(t, err)
}

func TestRunMapperErrorDropsOnlyThatTask(t *testing.T) {
	input := []Pair[string, int]{
		{Key: "good-1", Value: 1},
		{Key: "bad", Value: 1},
		{Key: "good-2", Value: 1},
	}
	mapper := MapperFunc[string, int, string, int](func(key string, value int) ([]Pair[string, int], error) {
		if key == "bad" {
			return nil, errors.New("malformed record")
		}
		return []Pair[string, int]{{Key: key, Value: value}}, nil
	})

	e := newCountEngine(t, 2, 2)
	results, stats := e.Run(input, mapper, sumReducer)

	m := resultMap(t, results)
	assert.Equal(t, 1, stats.DroppedMaps)
	assert.NotContains(t, m, "bad")
	assert.Contains(t, m, "good-1")
	assert.Contains(t, m, "good-2")
}

func TestRunMapperPanicIsContained(t *testing.T) {
	input := []Pair[string, int]{
		{Key: "boom", Value: 1},
		{Key: "ok", Value: 1},
	}
	mapper := MapperFunc[string, int, string, int](func(key string, value int) ([]Pair[string, int], error) {
		if key == "boom" {
			panic("mapper exploded")
		}
		return []Pair[string, int]{{Key: key, Value: value}}, nil
	})

	e := newCountEngine(t, 2, 2)
	results, stats := e.Run(input, mapper, sumReducer)

	assert.Equal(t, 1, stats.DroppedMaps)
	assert.Equal(t, map[string]int{"ok": 1}, resultMap(t, results))
}

func TestRunReducerErrorDropsOnlyThatKey(t *testing.T) {
	input := []Pair[string, int]{
		{Key: "keep", Value: 2},
		{Key: "drop", Value: 3},
	}
	reducer := ReducerFunc[string, int, Pair[string, int]](func(key string, values []int) ([]Pair[string, int], error) {
		if key == "drop" {
			return nil, errors.New("reducer rejected key")
		}
		return sumReducer(key, values)
	})

	e := newCountEngine(t, 2, 2)
	results, stats := e.Run(input, identityMapper, reducer)

	assert.Equal(t, 1, stats.DroppedReduces)
	assert.Equal(t, map[string]int{"keep": 2}, resultMap(t, results))
}

func TestRunReducerPanicIsContained(t *testing.T) {
	input := []Pair[string, int]{{Key: "boom", Value: 1}, {Key: "ok", Value: 5}}
	reducer := ReducerFunc[string, int, Pair[string, int]](func(key string, values []int) ([]Pair[string, int], error) {
		if key == "boom" {
			panic("reducer exploded")
		}
		return sumReducer(key, values)
	})

	e := newCountEngine(t, 2, 2)
	results, stats := e.Run(input, identityMapper, reducer)

	assert.Equal(t, 1, stats.DroppedReduces)
	assert.Equal(t, map[string]int{"ok": 5}, resultMap(t, results))
}

func TestMergeShardsIsDeterministic(t *testing.T) {
	shards := []map[string][]int{
		{"a": {1, 2}, "b": {3}},
		{"a": {4}, "c": {5, 5}},
		{},
	}

	first := mergeShards(shards)
	second := mergeShards(shards)

	require.Equal(t, first, second)
	assert.ElementsMatch(t, []int{1, 2, 4}, first["a"])
	assert.ElementsMatch(t, []int{3}, first["b"])
	assert.ElementsMatch(t, []int{5, 5}, first["c"], "duplicate values must survive the merge")
	assert.Len(t, first, 3)
}

func TestMergeShardsNoSpontaneousKeys(t *testing.T) {
	shards := []map[string][]int{
		{"x": {1}},
		nil,
		{"y": {2}},
	}
	groups := mergeShards(shards)
	assert.Equal(t, map[string][]int{"x": {1}, "y": {2}}, groups)
}

func TestRunMapperEmittingMultiplePairs(t *testing.T) {
	// one input record fans out to both its passenger and its airport
	input := []Pair[string, int]{{Key: "rec", Value: 1}}
	mapper := MapperFunc[string, int, string, int](func(key string, value int) ([]Pair[string, int], error) {
		return []Pair[string, int]{
			{Key: "passenger", Value: 1},
			{Key: "airport", Value: 1},
		}, nil
	})

	e := newCountEngine(t, 3, 3)
	results, stats := e.Run(input, mapper, sumReducer)

	assert.Equal(t, map[string]int{"passenger": 1, "airport": 1}, resultMap(t, results))
	assert.Equal(t, 2, stats.DistinctKeys)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "IDLE", PhaseIdle.String())
	assert.Equal(t, "MAPPING", PhaseMapping.String())
	assert.Equal(t, "SHUFFLING", PhaseShuffling.String())
	assert.Equal(t, "REDUCING", PhaseReducing.String())
	assert.Equal(t, "DONE", PhaseDone.String())
}
