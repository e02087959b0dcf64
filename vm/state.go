package vm

import "github.com/tinymachines/sovereign/isa"

// State is the complete, inspectable state of a VM: both stacks, memory,
// registers, the program counter, and the resource-accounting counters
// DumpState reports alongside them.
type State struct {
	DataStack     []isa.Value
	ControlStack  []isa.Value
	Memory        map[string]isa.Value
	Registers     map[string]isa.Value
	ProgramCounter int
	Running       bool
	ErrorState    string

	ExecutionSteps int
	MemoryUsage    int
}

// NewState returns a zeroed, ready-to-use State.
func NewState() *State {
	return &State{
		Memory:    make(map[string]isa.Value),
		Registers: make(map[string]isa.Value),
	}
}

// Snapshot is a read-only, copied view of State suitable for DumpState —
// callers can hold onto it without aliasing the VM's live slices/maps.
type Snapshot struct {
	DataStack      []isa.Value
	ControlStack   []isa.Value
	Memory         map[string]isa.Value
	Registers      map[string]isa.Value
	ProgramCounter int
	Running        bool
	ErrorState     string
	ExecutionSteps int
	MemoryUsage    int
	Config         Config
}

func (s *State) snapshot(cfg Config) Snapshot {
	data := make([]isa.Value, len(s.DataStack))
	copy(data, s.DataStack)
	control := make([]isa.Value, len(s.ControlStack))
	copy(control, s.ControlStack)
	mem := make(map[string]isa.Value, len(s.Memory))
	for k, v := range s.Memory {
		mem[k] = v
	}
	regs := make(map[string]isa.Value, len(s.Registers))
	for k, v := range s.Registers {
		regs[k] = v
	}

	return Snapshot{
		DataStack:      data,
		ControlStack:   control,
		Memory:         mem,
		Registers:      regs,
		ProgramCounter: s.ProgramCounter,
		Running:        s.Running,
		ErrorState:     s.ErrorState,
		ExecutionSteps: s.ExecutionSteps,
		MemoryUsage:    s.MemoryUsage,
		Config:         cfg,
	}
}
