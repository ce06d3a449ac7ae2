package util

import (
	"testing"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		count   int
		wantErr bool
	}{
		{
			name:    "valid number of arguments",
			args:    []string{"a", "b"},
			count:   2,
			wantErr: false,
		},
		{
			name:    "invalid number of arguments",
			args:    []string{"a"},
			count:   2,
			wantErr: true,
		},
		{
			name:    "no arguments",
			args:    []string{},
			count:   1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateArgs("RENAME", tt.args, tt.count); (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMinArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		minCount int
		wantErr  bool
	}{
		{"exact minimum", []string{"key", "member"}, 2, false},
		{"more than minimum", []string{"key", "a", "b"}, 2, false},
		{"below minimum", []string{"key"}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateMinArgs("SADD", tt.args, tt.minCount); (err != nil) != tt.wantErr {
				t.Errorf("ValidateMinArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePairs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"one pair", []string{"k", "v"}, false},
		{"two pairs", []string{"k1", "v1", "k2", "v2"}, false},
		{"dangling key", []string{"k1", "v1", "k2"}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePairs("MSET", tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePairs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err.Error() != "MSET: wrong number of arguments" {
				t.Errorf("ValidatePairs() error = %q", err)
			}
		})
	}
}
