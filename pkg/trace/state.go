package trace

import "strings"

// Address-space constants. The display layer partitions its "Stack" and
// "Heap" views on HeapBase, so every stack address must stay below it and
// every heap address at or above it.
const (
	StackBase = 0x1000
	HeapBase  = 0x8000

	cellSize = 4
)

// Frame is one simulated call-stack frame, created when a function body
// begins simulated execution and popped on its return step.
type Frame struct {
	FunctionName string
	ReturnAddr   int
	Vars         map[string]*MemoryCell
}

// HeapBlock is a simulated allocation. Blocks are never physically removed:
// a freed block stays in the map with Freed set, so dangling pointers remain
// detectable after the free.
type HeapBlock struct {
	Address int
	Size    int
	Content string
	Freed   bool
}

// State is the running simulation state. It is owned by exactly one
// Generator for exactly one run; each run starts from NewState.
type State struct {
	Memory  map[int]*MemoryCell
	Frames  []*Frame
	Heap    map[int]*HeapBlock
	console strings.Builder

	nextStack int
	nextHeap  int
}

func NewState() *State {
	return &State{
		Memory:    make(map[int]*MemoryCell),
		Heap:      make(map[int]*HeapBlock),
		nextStack: StackBase,
		nextHeap:  HeapBase,
	}
}

// Console returns the accumulated simulated output.
func (s *State) Console() string { return s.console.String() }

func (s *State) Write(text string) { s.console.WriteString(text) }

func (s *State) CurrentFrame() *Frame {
	if len(s.Frames) == 0 {
		return nil
	}
	return s.Frames[len(s.Frames)-1]
}

func (s *State) PushFrame(functionName string) *Frame {
	f := &Frame{
		FunctionName: functionName,
		ReturnAddr:   s.nextStack,
		Vars:         make(map[string]*MemoryCell),
	}
	s.Frames = append(s.Frames, f)
	return f
}

func (s *State) PopFrame() *Frame {
	f := s.CurrentFrame()
	if f != nil {
		s.Frames = s.Frames[:len(s.Frames)-1]
	}
	return f
}

// Declare allocates the next stack cell for a variable in the current frame.
func (s *State) Declare(name, typ string, value any) *MemoryCell {
	cell := &MemoryCell{
		Address: s.nextStack,
		Name:    name,
		Type:    typ,
		Value:   value,
	}
	s.nextStack += cellSize
	s.Memory[cell.Address] = cell
	if f := s.CurrentFrame(); f != nil {
		f.Vars[name] = cell
	}
	return cell
}

// Lookup finds a variable by name, searching frames innermost first.
func (s *State) Lookup(name string) (*MemoryCell, bool) {
	for i := len(s.Frames) - 1; i >= 0; i-- {
		if cell, ok := s.Frames[i].Vars[name]; ok {
			return cell, true
		}
	}
	return nil, false
}

// Set updates a variable's value, returning its cell.
func (s *State) Set(name string, value any) (*MemoryCell, bool) {
	cell, ok := s.Lookup(name)
	if !ok {
		return nil, false
	}
	cell.Value = value
	return cell, true
}

// Allocate reserves the next free heap block of the given byte size.
func (s *State) Allocate(size int) *HeapBlock {
	if size < cellSize {
		size = cellSize
	}
	block := &HeapBlock{Address: s.nextHeap, Size: size}
	s.Heap[block.Address] = block
	// Round the cursor up so blocks stay cell-aligned.
	s.nextHeap += ((size + cellSize - 1) / cellSize) * cellSize
	return block
}

// Free flags the block at addr. A block once freed is never un-freed.
func (s *State) Free(addr int) (*HeapBlock, bool) {
	block, ok := s.Heap[addr]
	if !ok {
		return nil, false
	}
	block.Freed = true
	return block, true
}
