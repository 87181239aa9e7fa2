package testutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/probemap"
	"github.com/calvinalkan/probemap/model"
)

// DefaultMaxFuzzOperations is the default maximum number of operations to
// run in a single fuzz iteration or deterministic behavior test.
//
// The value of 200 is enough depth for a run to grow past several capacity
// doublings, erase its way into a shrink, and reclaim tombstones, while
// keeping individual fuzz iterations fast.
const DefaultMaxFuzzOperations = 200

// cloneProbeKey is inserted into the pre-clone originals right after an
// OpClone swap. It lies outside the generator's key universe, so if it ever
// shows up on the clones the copy aliased its source.
const cloneProbeKey = "clone-independence-probe"

// BehaviorRunConfig configures a model-vs-real behavior run.
type BehaviorRunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// CompareEveryN runs CompareState every N operations (0 to disable).
	// The run always compares once more after the last operation.
	CompareEveryN int

	// CompareOnClone runs CompareState right after an OpClone swap.
	CompareOnClone bool
}

// Harness holds:
//   - a simple in-memory model (a builtin map), and
//   - the real open-addressing implementation,
//
// always applying the same operation to both sides, then comparing the
// direct result and, periodically, the whole observable state.
//
// The real map hashes with [probemap.StringHasher] so a fuzz input
// reproduces the same slot layout on every run.
type Harness struct {
	Real  *probemap.Map[string, string]
	Model *model.Map
}

// NewHarness constructs a model-vs-real harness.
func NewHarness() *Harness {
	return &Harness{
		Real:  probemap.NewFunc[string, string](probemap.StringHasher()),
		Model: model.New(),
	}
}

// RunBehavior decodes a deterministic operation stream from data and
// compares public API behavior between the model and the real map.
func RunBehavior(tb testing.TB, data []byte, cfg BehaviorRunConfig) {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunBehavior requires MaxOps > 0")
	}

	h := NewHarness()
	gen := NewOpGenerator(data)

	for opIndex := 1; opIndex <= cfg.MaxOps && gen.HasMore(); opIndex++ {
		op := gen.NextOp()

		modelResult := ApplyModel(h, op)
		realResult := ApplyReal(h, op)

		AssertOpMatch(tb, op, modelResult, realResult)

		if _, isClone := op.(OpClone); isClone && cfg.CompareOnClone {
			CompareState(tb, h)

			continue
		}

		if cfg.CompareEveryN > 0 && opIndex%cfg.CompareEveryN == 0 {
			CompareState(tb, h)
		}
	}

	CompareState(tb, h)
}

// ApplyModel applies an operation to the model side.
func ApplyModel(h *Harness, op Operation) OperationResult {
	switch concrete := op.(type) {
	case OpInsert:
		return ResBool{Value: h.Model.Insert(concrete.Key, concrete.Value)}

	case OpErase:
		return ResBool{Value: h.Model.Erase(concrete.Key)}

	case OpGet:
		v, found := h.Model.Get(concrete.Key)

		return ResValue{Value: v, Found: found}

	case OpAt:
		v, err := h.Model.At(concrete.Key)

		return ResValueErr{Value: v, Error: err}

	case OpContains:
		return ResBool{Value: h.Model.Contains(concrete.Key)}

	case OpRef:
		return ResValue{Value: h.Model.Ref(concrete.Key), Found: true}

	case OpRefSet:
		h.Model.RefSet(concrete.Key, concrete.Value)

		return ResNone{}

	case OpLen:
		return ResLen{Length: h.Model.Len(), IsEmpty: h.Model.Empty()}

	case OpClear:
		h.Model.Clear()

		return ResNone{}

	case OpClone:
		clone := h.Model.Clone()

		// Mutate the original after the fork; the clone must not see it.
		h.Model.Insert(cloneProbeKey, "x")
		h.Model = clone

		return ResNone{}

	default:
		panic("unknown operation type")
	}
}

// ApplyReal applies an operation to the real map.
func ApplyReal(h *Harness, op Operation) OperationResult {
	switch concrete := op.(type) {
	case OpInsert:
		return ResBool{Value: h.Real.Insert(concrete.Key, concrete.Value)}

	case OpErase:
		return ResBool{Value: h.Real.Erase(concrete.Key)}

	case OpGet:
		v, found := h.Real.Get(concrete.Key)

		return ResValue{Value: v, Found: found}

	case OpAt:
		v, err := h.Real.At(concrete.Key)

		return ResValueErr{Value: v, Error: err}

	case OpContains:
		return ResBool{Value: h.Real.Contains(concrete.Key)}

	case OpRef:
		return ResValue{Value: *h.Real.Ref(concrete.Key), Found: true}

	case OpRefSet:
		*h.Real.Ref(concrete.Key) = concrete.Value

		return ResNone{}

	case OpLen:
		return ResLen{Length: h.Real.Len(), IsEmpty: h.Real.Empty()}

	case OpClear:
		h.Real.Clear()

		return ResNone{}

	case OpClone:
		clone := h.Real.Clone()

		h.Real.Insert(cloneProbeKey, "x")
		h.Real = clone

		return ResNone{}

	default:
		panic("unknown operation type")
	}
}

// AssertOpMatch compares model and real operation results and fails the
// test if they differ.
func AssertOpMatch(tb testing.TB, op Operation, modelResult, realResult OperationResult) {
	tb.Helper()

	switch modelTyped := modelResult.(type) {
	case ResBool:
		realTyped, ok := realResult.(ResBool)
		if !ok {
			panic("test harness bug: real result type does not match model result type")
		}

		if modelTyped.Value != realTyped.Value {
			tb.Fatalf("%s: result mismatch\nmodel=%v\nreal=%v", op.String(), modelTyped.Value, realTyped.Value)
		}

	case ResValue:
		realTyped, ok := realResult.(ResValue)
		if !ok {
			panic("test harness bug: real result type does not match model result type")
		}

		if modelTyped.Found != realTyped.Found {
			tb.Fatalf("%s: found mismatch\nmodel=%v\nreal=%v", op.String(), modelTyped.Found, realTyped.Found)
		}

		if modelTyped.Value != realTyped.Value {
			tb.Fatalf("%s: value mismatch\nmodel=%q\nreal=%q", op.String(), modelTyped.Value, realTyped.Value)
		}

	case ResValueErr:
		realTyped, ok := realResult.(ResValueErr)
		if !ok {
			panic("test harness bug: real result type does not match model result type")
		}

		if !errorsMatch(modelTyped.Error, realTyped.Error) {
			tb.Fatalf("%s: error mismatch\nmodel=%v\nreal=%v", op.String(), modelTyped.Error, realTyped.Error)
		}

		if modelTyped.Value != realTyped.Value {
			tb.Fatalf("%s: value mismatch\nmodel=%q\nreal=%q", op.String(), modelTyped.Value, realTyped.Value)
		}

	case ResLen:
		realTyped, ok := realResult.(ResLen)
		if !ok {
			panic("test harness bug: real result type does not match model result type")
		}

		if modelTyped.Length != realTyped.Length {
			tb.Fatalf("%s: length mismatch\nmodel=%d\nreal=%d", op.String(), modelTyped.Length, realTyped.Length)
		}

		if modelTyped.IsEmpty != realTyped.IsEmpty {
			tb.Fatalf("%s: empty mismatch\nmodel=%v\nreal=%v", op.String(), modelTyped.IsEmpty, realTyped.IsEmpty)
		}

	case ResNone:
		if _, ok := realResult.(ResNone); !ok {
			panic("test harness bug: real result type does not match model result type")
		}

	default:
		panic("unknown result type")
	}
}

// CompareState checks every hash-independent observable of the real map
// against the model: counts, enumeration as a set, per-key lookups through
// Find, and table geometry.
func CompareState(tb testing.TB, h *Harness) {
	tb.Helper()

	if h.Real.Len() != h.Model.Len() {
		tb.Fatalf("Len mismatch\nmodel=%d\nreal=%d", h.Model.Len(), h.Real.Len())
	}

	if h.Real.Empty() != h.Model.Empty() {
		tb.Fatalf("Empty mismatch\nmodel=%v\nreal=%v", h.Model.Empty(), h.Real.Empty())
	}

	collected := map[string]string{}
	yielded := 0

	for k, v := range h.Real.All() {
		if _, dup := collected[k]; dup {
			tb.Fatalf("All() yielded key %q twice", k)
		}

		collected[k] = v
		yielded++
	}

	if yielded != h.Real.Len() {
		tb.Fatalf("All() yielded %d entries, Len() reports %d", yielded, h.Real.Len())
	}

	if diff := cmp.Diff(h.Model.Entries, collected); diff != "" {
		tb.Fatalf("state mismatch (-model +real):\n%s", diff)
	}

	for k, v := range h.Model.Entries {
		c := h.Real.Find(k)
		if !c.Valid() {
			tb.Fatalf("Find(%q): entry missing from real map", k)
		}

		if c.Value() != v {
			tb.Fatalf("Find(%q): value mismatch\nmodel=%q\nreal=%q", k, v, c.Value())
		}
	}

	capacity := h.Real.Cap()
	if capacity < probemap.MinCapacity || capacity&(capacity-1) != 0 {
		tb.Fatalf("capacity %d is not a power of two >= %d", capacity, probemap.MinCapacity)
	}

	if h.Real.Len() > capacity {
		tb.Fatalf("live count %d exceeds capacity %d", h.Real.Len(), capacity)
	}
}

// errorsMatch compares an error pair for sentinel-level equivalence. The
// real side wraps sentinels with context, the model returns them bare.
func errorsMatch(modelErr, realErr error) bool {
	if (modelErr == nil) != (realErr == nil) {
		return false
	}

	if modelErr == nil {
		return true
	}

	return errors.Is(realErr, probemap.ErrKeyNotFound) && errors.Is(modelErr, probemap.ErrKeyNotFound)
}
