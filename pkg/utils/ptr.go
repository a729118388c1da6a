package utils

import (
	"time"

	"github.com/aarondl/null/v8"
)

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func ToPtr[T any](v T) *T {
	return &v
}

// Конвертеры null-типов в указатели для DTO.

func NullStringPtr(v null.String) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func NullTimePtr(v null.Time) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func NullFloat64Ptr(v null.Float64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
