package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "doctool.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "doctool.yaml" {
			t.Errorf("expected context file=doctool.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := ShapeError("bad declaration").Build()
		err := fmt.Errorf("clean OpenUSD@a.h.swift.symbols.json: %w", inner)

		if !IsClassified(err) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(err, CategoryShape) {
			t.Error("expected error to have shape category")
		}
		if GetSeverity(err) != SeverityFatal {
			t.Error("expected shape error to be fatal")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified error to report internal category")
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ProcessError("clang failed").Build()
		derived := base.WithContext("header", "a.h")

		if _, ok := base.Context().Get("header"); ok {
			t.Error("expected base context to stay unchanged")
		}
		if h, _ := derived.Context().GetString("header"); h != "a.h" {
			t.Errorf("expected header=a.h, got %s", h)
		}
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := CanceledError("interrupted").Build()
		b := CanceledError("interrupted").WithContext("signal", "SIGINT").Build()
		if !errors.Is(a, b) {
			t.Error("expected errors with same category and message to match")
		}
		if errors.Is(a, InternalError("interrupted").Build()) {
			t.Error("expected different categories not to match")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("exit status 1")
		err := WrapError(originalErr, CategoryProcess, "swift build failed").
			Warning().
			WithContext("tool", "swift").
			WithContext("exit_code", 1).
			Build()

		if err.Category() != CategoryProcess {
			t.Errorf("expected category %s, got %s", CategoryProcess, err.Category())
		}
		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Error() != "[process:warning] swift build failed: exit status 1" {
			t.Errorf("unexpected message %q", err.Error())
		}

		tool, _ := err.Context().GetString("tool")
		if tool != "swift" {
			t.Errorf("expected tool context 'swift', got %s", tool)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"ProcessError", ProcessError("test"), CategoryProcess, SeverityFatal},
			{"ShapeError", ShapeError("test"), CategoryShape, SeverityFatal},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal},
			{"CodecError", CodecError("test"), CategoryCodec, SeverityFatal},
			{"CanceledError", CanceledError("test"), CategoryCanceled, SeverityError},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if !err.IsFatal() && tt.severity == SeverityFatal {
					t.Error("expected fatal error")
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	t.Run("Context operations", func(t *testing.T) {
		ctx := make(ErrorContext)
		ctx = ctx.Set("key1", "value1")
		ctx = ctx.Set("key2", 42)

		value1, exists1 := ctx.GetString("key1")
		if !exists1 || value1 != "value1" {
			t.Errorf("expected key1=value1, got %v", value1)
		}

		value2, exists2 := ctx.Get("key2")
		if !exists2 || value2 != 42 {
			t.Errorf("expected key2=42, got %v", value2)
		}

		if _, exists3 := ctx.Get("nonexistent"); exists3 {
			t.Error("expected nonexistent key to not exist")
		}
	})

	t.Run("Context merge", func(t *testing.T) {
		ctx1 := ErrorContext{"key1": "value1", "shared": "original"}
		ctx2 := ErrorContext{"key2": "value2", "shared": "overridden"}

		merged := ctx1.Merge(ctx2)

		value1, _ := merged.GetString("key1")
		value2, _ := merged.GetString("key2")
		shared, _ := merged.GetString("shared")

		if value1 != "value1" || value2 != "value2" {
			t.Errorf("expected both keys, got %s and %s", value1, value2)
		}
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
	})
}
