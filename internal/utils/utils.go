package utils

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// --- 1. Error Taxonomy ---

// UsageError marks a command line that could not be interpreted.
// It is reported with the usage text and exit status 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// InputError is returned when the source image cannot be opened or decoded.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string { return fmt.Sprintf("input %s: %v", e.Path, e.Err) }
func (e *InputError) Unwrap() error { return e.Err }

// OutputError is returned when the destination directory or file cannot be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string { return fmt.Sprintf("output %s: %v", e.Path, e.Err) }
func (e *OutputError) Unwrap() error { return e.Err }

// ConfigError is returned when the --config file cannot be read or does not
// match the expected keys.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Path, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// ResourceError is returned when a font fails to parse. For the embedded font
// this means the binary was built from a corrupt asset.
type ResourceError struct {
	Name string
	Err  error
}

func (e *ResourceError) Error() string { return fmt.Sprintf("resource %s: %v", e.Name, e.Err) }
func (e *ResourceError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// Headline gives the one-line summary printed above the error details.
func Headline(err error) string {
	var (
		usage    *UsageError
		input    *InputError
		output   *OutputError
		resource *ResourceError
		config   *ConfigError
	)
	switch {
	case errors.As(err, &usage):
		return "Invalid usage"
	case errors.As(err, &input):
		return "Failed to read input image"
	case errors.As(err, &output):
		return "Failed to write output image"
	case errors.As(err, &resource):
		return "Failed to load font"
	case errors.As(err, &config):
		return "Failed to load config file"
	default:
		return "Labeling failed"
	}
}

// --- 2. Reporting ---

// ShowError prints a formatted error box.
// It is the single place where failures are presented to the user.
func ShowError(w io.Writer, context string, err error) {
	fmt.Fprintf(w, "\n---------------------------------------------------------\n")
	fmt.Fprintf(w, "🚨 IMGLABEL ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(w, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(w, "---------------------------------------------------------\n")
}

// --- 3. Colours ---

// ParseHexColor accepts #RGB, #RRGGBB and #RRGGBBAA (the '#' is optional).
// Short forms are expanded by digit doubling; a missing alpha is opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want #RGB, #RRGGBB or #RRGGBBAA", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
