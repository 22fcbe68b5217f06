// Package trace turns a parsed program into an ordered, replayable list of
// execution steps. It is not an interpreter: a classifier matches the source
// against a fixed set of idiom fingerprints and a hand-scripted generator
// plays out the canonical trace for the winning category, with a generic
// fallback for everything else.
package trace

// StepKind names what a step represents. The values are the display layer's
// vocabulary, so they serialize as-is.
type StepKind string

const (
	StepInitialization StepKind = "initialization"
	StepDeclaration    StepKind = "declaration"
	StepAssignment     StepKind = "assignment"
	StepCall           StepKind = "call"
	StepReturn         StepKind = "return"
	StepAllocation     StepKind = "allocation"
	StepDeallocation   StepKind = "deallocation"
	StepLoop           StepKind = "loop"
	StepCondition      StepKind = "condition"
	StepWarning        StepKind = "warning"
	StepError          StepKind = "error"
	StepInformation    StepKind = "information"
	StepFinalization   StepKind = "finalization"
)

// MemoryCell is one simulated cell. Addresses are synthetic: stack cells
// live below HeapBase, heap cells at or above it.
type MemoryCell struct {
	Address int    `json:"address"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Value   any    `json:"value"`
}

// Stack change kinds carried by Delta.Stack.
const (
	StackAddedVariable   = "added-variable"
	StackUpdatedVariable = "updated-variable"
	StackFrameRemoved    = "frame-removed"
)

// StackChange describes what happened to one function's frame.
type StackChange struct {
	Change   string      `json:"change"`
	Variable string      `json:"variable,omitempty"`
	Cell     *MemoryCell `json:"cell,omitempty"`
}

// HeapChange describes one heap block's state after the step.
type HeapChange struct {
	Size  int  `json:"size"`
	Freed bool `json:"freed"`
}

// Delta is the sparse patch a step applies to the simulated machine state.
// Consumers render the cumulative effect of deltas from step 0 through the
// current step index.
type Delta struct {
	Memory map[int]MemoryCell     `json:"memory,omitempty"`
	Stack  map[string]StackChange `json:"stack,omitempty"`
	Heap   map[int]HeapChange     `json:"heap,omitempty"`
	Output string                 `json:"output,omitempty"`
}

// ExecutionStep is one entry in the replayable trace. Steps are append-only
// and never mutated after creation.
type ExecutionStep struct {
	Kind        StepKind `json:"kind"`
	SourceLine  int      `json:"sourceLine"`
	Description string   `json:"description"`
	Delta       Delta    `json:"delta"`
}
