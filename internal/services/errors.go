package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks a failure inside an invoked converter binary.
	ErrExternalTool = errors.New("external tool error")

	// ErrConversionFailed marks one derivative that could not be produced,
	// including timeouts. Other planned derivatives still proceed.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrConfiguration marks a missing or invalid command template.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupported marks an input no collaborator can handle. It is a
	// skip signal, not a failure.
	ErrUnsupported = errors.New("unsupported input")
)

// Wrap builds an error message carrying component context while tagging it
// with the provided sentinel for later classification.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{component, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
