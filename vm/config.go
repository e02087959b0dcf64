package vm

// Config bounds the resources a single VM execution may consume.
type Config struct {
	MaxStackSize      int `toml:"max_stack_size"`
	MaxMemorySize     int `toml:"max_memory_size"`
	MaxExecutionSteps int `toml:"max_execution_steps"`
	MaxCallDepth      int `toml:"max_call_depth"`

	// RealisticMemoryAccounting sizes strings by their actual length
	// instead of the flat 64-byte cost the default model uses.
	RealisticMemoryAccounting bool `toml:"realistic_memory_accounting"`
}

// DefaultConfig returns the VM's default resource bounds.
func DefaultConfig() Config {
	return Config{
		MaxStackSize:              1000,
		MaxMemorySize:             10000,
		MaxExecutionSteps:         100000,
		MaxCallDepth:              100,
		RealisticMemoryAccounting: false,
	}
}
