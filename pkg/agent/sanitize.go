package agent

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTaskSize bounds a task description in bytes.
	DefaultMaxTaskSize = 8192
	// EnvMaxTaskSize overrides DefaultMaxTaskSize.
	EnvMaxTaskSize = "RADIOLAB_MAX_TASK_SIZE"
)

var (
	ErrEmptyTask    = errors.New("task description is empty")
	ErrTaskTooLarge = errors.New("task description exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("task description contains invalid UTF-8 sequences")
)

// SanitizeTask enforces the size limit, validates UTF-8, strips control
// characters other than newline, tab and carriage return, and trims the result.
func SanitizeTask(task string) (string, error) {
	limit := maxTaskSize()
	if len(task) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTaskTooLarge, len(task), limit)
	}
	if !utf8.ValidString(task) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(task))
	for _, r := range task {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}

	clean := strings.TrimSpace(b.String())
	if clean == "" {
		return "", ErrEmptyTask
	}
	return clean, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxTaskSize() int {
	if val := os.Getenv(EnvMaxTaskSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTaskSize
}
