package tools_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/taskloop/tools"
)

func TestArgs_String(t *testing.T) {
	args := tools.Args{
		"s":   "hello",
		"n":   float64(42),
		"f":   1.5,
		"b":   true,
		"obj": map[string]any{"k": "v"},
	}

	tests := []struct {
		key  string
		want string
	}{
		{"s", "hello"},
		{"n", "42"},
		{"f", "1.5"},
		{"b", "true"},
		{"obj", `{"k":"v"}`},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := args.String(tt.key); got != tt.want {
				t.Errorf("String(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestArgs_Int(t *testing.T) {
	args := tools.Args{
		"float":  float64(30),
		"string": " 45 ",
		"bad":    "soon",
	}

	tests := []struct {
		key  string
		want int
	}{
		{"float", 30},
		{"string", 45},
		{"bad", 60},
		{"missing", 60},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := args.Int(tt.key, 60); got != tt.want {
				t.Errorf("Int(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestArgs_Require(t *testing.T) {
	tests := []struct {
		name    string
		args    tools.Args
		wantErr bool
	}{
		{"present", tools.Args{"filename": "a.txt"}, false},
		{"missing", tools.Args{}, true},
		{"blank", tools.Args{"filename": "   "}, true},
		{"null", tools.Args{"filename": nil}, true},
		{"non-string present", tools.Args{"filename": 3.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Require("filename")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Require() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tools.ErrArgument) {
				t.Errorf("Require() error = %v, want wrapping ErrArgument", err)
			}
		})
	}
}

func TestArgs_Only(t *testing.T) {
	tests := []struct {
		name    string
		args    tools.Args
		wantErr string
	}{
		{"declared only", tools.Args{"filename": "a", "code": "x"}, ""},
		{"empty", tools.Args{}, ""},
		{"one extra", tools.Args{"filename": "a", "mode": "append"}, "mode"},
		{"extras sorted", tools.Args{"z": 1, "filename": "a", "b": 2}, "b, z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Only("filename", "code")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Only() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tools.ErrArgument) {
				t.Fatalf("Only() error = %v, want wrapping ErrArgument", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Only() error = %q, want it to name %q", err, tt.wantErr)
			}
		})
	}
}
