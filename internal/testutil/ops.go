// Package testutil provides ops, a deterministic generator, and a
// model-vs-real harness for probemap behavior tests.
package testutil

import "fmt"

// Operation is a single public-API call applied to both the model and the
// real map.
//
// NOTE: These ops are intentionally "behavior-level". They never reach into
// slot layout, probe order, or capacity, all of which depend on the hash
// function.
type Operation interface {
	Name() string
	String() string
}

// OpInsert represents an Insert(key, value) call.
type OpInsert struct {
	Key   string
	Value string
}

// Name returns the operation name.
func (OpInsert) Name() string { return "Insert" }
func (op OpInsert) String() string {
	return fmt.Sprintf("Insert(%q, %q)", op.Key, op.Value)
}

// OpErase represents an Erase(key) call.
type OpErase struct {
	Key string
}

// Name returns the operation name.
func (OpErase) Name() string { return "Erase" }
func (op OpErase) String() string {
	return fmt.Sprintf("Erase(%q)", op.Key)
}

// OpGet represents a Get(key) call.
type OpGet struct {
	Key string
}

// Name returns the operation name.
func (OpGet) Name() string { return "Get" }
func (op OpGet) String() string {
	return fmt.Sprintf("Get(%q)", op.Key)
}

// OpAt represents an At(key) call.
type OpAt struct {
	Key string
}

// Name returns the operation name.
func (OpAt) Name() string { return "At" }
func (op OpAt) String() string {
	return fmt.Sprintf("At(%q)", op.Key)
}

// OpContains represents a Contains(key) call.
type OpContains struct {
	Key string
}

// Name returns the operation name.
func (OpContains) Name() string { return "Contains" }
func (op OpContains) String() string {
	return fmt.Sprintf("Contains(%q)", op.Key)
}

// OpRef represents a read through Ref(key): the zero value is inserted when
// the key is absent, and the value now stored is observed.
type OpRef struct {
	Key string
}

// Name returns the operation name.
func (OpRef) Name() string { return "Ref" }
func (op OpRef) String() string {
	return fmt.Sprintf("Ref(%q)", op.Key)
}

// OpRefSet represents a write through Ref(key): *Ref(key) = value. Unlike
// Insert it overwrites an existing entry.
type OpRefSet struct {
	Key   string
	Value string
}

// Name returns the operation name.
func (OpRefSet) Name() string { return "RefSet" }
func (op OpRefSet) String() string {
	return fmt.Sprintf("*Ref(%q) = %q", op.Key, op.Value)
}

// OpLen represents a Len() plus Empty() call.
type OpLen struct{}

// Name returns the operation name.
func (OpLen) Name() string   { return "Len" }
func (OpLen) String() string { return "Len()" }

// OpClear represents a Clear() call.
type OpClear struct{}

// Name returns the operation name.
func (OpClear) Name() string   { return "Clear" }
func (OpClear) String() string { return "Clear()" }

// OpClone clones both sides and continues the run on the clones. The state
// comparison that follows checks that cloning preserved every entry; the
// originals are mutated once afterward to check independence.
type OpClone struct{}

// Name returns the operation name.
func (OpClone) Name() string   { return "Clone" }
func (OpClone) String() string { return "Clone()" }

// OperationResult is the observable outcome of one operation.
type OperationResult interface {
	result()
}

// ResBool carries a boolean outcome (Insert stored, Erase removed,
// Contains present).
type ResBool struct {
	Value bool
}

func (ResBool) result() {}

// ResValue carries a Get or Ref outcome.
type ResValue struct {
	Value string
	Found bool
}

func (ResValue) result() {}

// ResValueErr carries an At outcome.
type ResValueErr struct {
	Value string
	Error error
}

func (ResValueErr) result() {}

// ResLen carries Len and Empty outcomes.
type ResLen struct {
	Length  int
	IsEmpty bool
}

func (ResLen) result() {}

// ResNone marks operations whose only outcome is state (Clear, Clone).
type ResNone struct{}

func (ResNone) result() {}
