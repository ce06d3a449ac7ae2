package util

import (
	"fmt"
)

// ValidateArgs checks that cmd received exactly count arguments.
func ValidateArgs(cmd string, args []string, count int) error {
	if len(args) != count {
		return fmt.Errorf("%s: wrong number of arguments", cmd)
	}
	return nil
}

func ValidateMinArgs(cmd string, args []string, minCount int) error {
	if len(args) < minCount {
		return fmt.Errorf("%s: wrong number of arguments", cmd)
	}
	return nil
}

// ValidatePairs checks for a non-empty list of key/value pairs, as MSET takes.
func ValidatePairs(cmd string, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("%s: wrong number of arguments", cmd)
	}
	return nil
}
