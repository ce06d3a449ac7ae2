package models

import "fmt"

// Value is a single RESP frame exchanged with the store.
type Value struct {
	Type  string
	Str   string
	Num   int64
	Bulk  string
	Array []Value
}

// Command builds the array-of-bulk-strings frame clients send to the server.
func Command(name string, args ...string) Value {
	array := make([]Value, 0, len(args)+1)
	array = append(array, Value{Type: "bulk", Bulk: name})
	for _, arg := range args {
		array = append(array, Value{Type: "bulk", Bulk: arg})
	}
	return Value{Type: "array", Array: array}
}

func (v Value) String() string {
	switch v.Type {
	case "string":
		return fmt.Sprintf("String: %s", v.Str)
	case "error":
		return fmt.Sprintf("Error: %s", v.Str)
	case "integer":
		return fmt.Sprintf("Integer: %d", v.Num)
	case "bulk":
		return fmt.Sprintf("Bulk: %s", v.Bulk)
	case "null":
		return "Null"
	case "array":
		return fmt.Sprintf("Array: %v", v.Array)
	default:
		return fmt.Sprintf("Unknown Type: %s", v.Type)
	}
}

// IsError reports whether the frame is an error reply.
func (v Value) IsError() bool {
	return v.Type == "error"
}

// IsCommand reports whether the frame is a request for cmd. The name match
// is case-sensitive; callers normalise before comparing.
func (v Value) IsCommand(cmd string) bool {
	return v.Type == "array" && len(v.Array) > 0 && v.Array[0].Bulk == cmd
}

// Text returns the textual payload of a simple or bulk string.
func (v Value) Text() string {
	if v.Type == "bulk" {
		return v.Bulk
	}
	return v.Str
}
