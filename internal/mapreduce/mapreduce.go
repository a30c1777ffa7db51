package mapreduce

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/CalsRain408/determine-numbers-of-flights/internal/logger"
)

// Phase identifies where a run currently is in its lifecycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseMapping
	PhaseShuffling
	PhaseReducing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseMapping:
		return "MAPPING"
	case PhaseShuffling:
		return "SHUFFLING"
	case PhaseReducing:
		return "REDUCING"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// Stats summarizes one run. Dropped counts cover tasks whose mapper or
// reducer invocation returned an error or panicked; their output was
// discarded entirely.
type Stats struct {
	MapTasks        int
	DroppedMaps     int
	ReduceTasks     int
	DroppedReduces  int
	DistinctKeys    int
	MapDuration     time.Duration
	ShuffleDuration time.Duration
	ReduceDuration  time.Duration
}

// Engine runs two-phase map/shuffle/reduce jobs over in-memory key-value
// pairs using fixed-size goroutine pools.
//
// An Engine holds no job state between runs; every Run builds its own queues
// and tables, so sequential runs on one instance never see each other's data.
// Runs must not overlap on the same instance.
type Engine[K comparable, V any, IK comparable, IV any, R any] struct {
	numMappers  int
	numReducers int
	logger      *logger.Logger
	phase       atomic.Int32
}

// New creates an engine with the given pool sizes. Pool sizes below one are
// rejected here: a zero-sized pool would leave its queue undrained and block
// a run forever.
func New[K comparable, V any, IK comparable, IV any, R any](numMappers, numReducers int, lg *logger.Logger) (*Engine[K, V, IK, IV, R], error) {
	if numMappers < 1 {
		return nil, fmt.Errorf("mapper pool size must be at least 1, got %d", numMappers)
	}
	if numReducers < 1 {
		return nil, fmt.Errorf("reducer pool size must be at least 1, got %d", numReducers)
	}
	if lg == nil {
		lg = logger.New("INFO")
	}
	return &Engine[K, V, IK, IV, R]{
		numMappers:  numMappers,
		numReducers: numReducers,
		logger:      lg,
	}, nil
}

// Phase reports the engine's current phase.
func (e *Engine[K, V, IK, IV, R]) Phase() Phase {
	return Phase(e.phase.Load())
}

func (e *Engine[K, V, IK, IV, R]) setPhase(runID string, p Phase) {
	e.phase.Store(int32(p))
	e.logger.Debug("run %s: phase %s", runID, p)
}

// Run executes one job: map every input pair, group intermediate pairs by
// key, reduce each group, and return the unordered results.
//
// Run never fails: a mapper or reducer error (or panic) drops that one
// task's output and the run carries on. The Stats value reports how many
// tasks were dropped so callers are not limited to reading logs.
func (e *Engine[K, V, IK, IV, R]) Run(input []Pair[K, V], mapper Mapper[K, V, IK, IV], reducer Reducer[IK, IV, R]) ([]R, Stats) {
	runID := uuid.New().String()[:8]
	stats := Stats{MapTasks: len(input)}

	// Map phase. The task channel is filled once and closed before the
	// workers see it empty; ranging over a closed channel makes the
	// no-late-work assumption structural instead of a polling race.
	mapTasks := make(chan Pair[K, V], len(input))
	for _, p := range input {
		mapTasks <- p
	}
	close(mapTasks)

	e.logger.Info("run %s: starting %d mapper workers over %d tasks", runID, e.numMappers, len(input))
	e.setPhase(runID, PhaseMapping)
	mapStart := time.Now()

	// Each worker owns a private shard, so the map phase needs no shared
	// lock at all; shards are merged once the pool has quiesced.
	shards := make([]map[IK][]IV, e.numMappers)
	var droppedMaps atomic.Int64
	var mapWG sync.WaitGroup
	for i := 0; i < e.numMappers; i++ {
		mapWG.Add(1)
		go func(worker int) {
			defer mapWG.Done()
			shard := make(map[IK][]IV)
			shards[worker] = shard
			for task := range mapTasks {
				pairs, err := invokeMap(mapper, task.Key, task.Value)
				if err != nil {
					droppedMaps.Add(1)
					e.logger.Error("run %s: mapper %d dropped task %v: %v", runID, worker, task.Key, err)
					continue
				}
				for _, p := range pairs {
					shard[p.Key] = append(shard[p.Key], p.Value)
				}
			}
		}(i)
	}
	mapWG.Wait()
	stats.MapDuration = time.Since(mapStart)
	stats.DroppedMaps = int(droppedMaps.Load())
	e.logger.Info("run %s: all mappers finished (%d of %d tasks dropped)", runID, stats.DroppedMaps, stats.MapTasks)

	// Shuffle phase, single-threaded on the calling goroutine.
	e.setPhase(runID, PhaseShuffling)
	shuffleStart := time.Now()
	groups := mergeShards(shards)
	reduceTasks := make(chan Pair[IK, []IV], len(groups))
	for key, values := range groups {
		reduceTasks <- Pair[IK, []IV]{Key: key, Value: values}
	}
	close(reduceTasks)
	stats.ShuffleDuration = time.Since(shuffleStart)
	stats.DistinctKeys = len(groups)
	stats.ReduceTasks = len(groups)

	// Reduce phase.
	e.logger.Info("run %s: starting %d reducer workers over %d keys", runID, e.numReducers, len(groups))
	e.setPhase(runID, PhaseReducing)
	reduceStart := time.Now()

	var results []R
	var resultsMu sync.Mutex
	var droppedReduces atomic.Int64
	var reduceWG sync.WaitGroup
	for i := 0; i < e.numReducers; i++ {
		reduceWG.Add(1)
		go func(worker int) {
			defer reduceWG.Done()
			for task := range reduceTasks {
				out, err := invokeReduce(reducer, task.Key, task.Value)
				if err != nil {
					droppedReduces.Add(1)
					e.logger.Error("run %s: reducer %d dropped key %v: %v", runID, worker, task.Key, err)
					continue
				}
				resultsMu.Lock()
				results = append(results, out...)
				resultsMu.Unlock()
			}
		}(i)
	}
	reduceWG.Wait()
	stats.ReduceDuration = time.Since(reduceStart)
	stats.DroppedReduces = int(droppedReduces.Load())

	e.setPhase(runID, PhaseDone)
	e.logger.Info("run %s: all reducers finished (%d of %d keys dropped)", runID, stats.DroppedReduces, stats.ReduceTasks)
	return results, stats
}

// mergeShards folds per-worker shard maps into one grouping of every value
// emitted for each intermediate key. Duplicates are kept; accumulation
// order is not meaningful.
func mergeShards[IK comparable, IV any](shards []map[IK][]IV) map[IK][]IV {
	groups := make(map[IK][]IV)
	for _, shard := range shards {
		for key, values := range shard {
			groups[key] = append(groups[key], values...)
		}
	}
	return groups
}

// invokeMap calls the mapper and converts a panic into an error, so a
// faulty user function costs one task, not a worker.
func invokeMap[K comparable, V any, IK comparable, IV any](m Mapper[K, V, IK, IV], key K, value V) (pairs []Pair[IK, IV], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mapper panicked: %v", r)
		}
	}()
	return m.Map(key, value)
}

// invokeReduce is the reduce-side counterpart of invokeMap.
func invokeReduce[IK comparable, IV any, R any](r Reducer[IK, IV, R], key IK, values []IV) (out []R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reducer panicked: %v", rec)
		}
	}()
	return r.Reduce(key, values)
}
