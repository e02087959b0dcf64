package parser

import "os"

// ParseFile reads and parses a Sovereign assembly file from disk.
func ParseFile(filePath string) (*Program, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- caller-provided program path
	if err != nil {
		return nil, err
	}
	return NewParser().Parse(string(content))
}
