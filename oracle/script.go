package oracle

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Script is the subprocess oracle: it shells out to a local executable,
// passing the encoded ciphertext as the sole argument, and treats a zero
// exit code as "padding valid". Stdout and stderr are discarded — the
// executable's only observable signal is its exit code.
type Script struct {
	path   string
	encode func([]byte) string
	thread time.Duration
}

// NewScript builds a Script oracle that invokes path, encoding each
// ciphertext attempt with encode before passing it as an argument.
func NewScript(path string, encode func([]byte) string, threadDelay time.Duration) *Script {
	return &Script{path: path, encode: encode, thread: threadDelay}
}

// AskValidation implements Oracle. It runs `/bin/sh -c "<path> <ciphertext>"`
// and treats exit code 0 as valid padding. A non-zero exit code is *invalid
// padding*, not an error; only a failure to launch the shell at all is
// reported as an error.
func (s *Script) AskValidation(ctx context.Context, ciphertext []byte) (bool, error) {
	encoded := s.encode(ciphertext)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", fmt.Sprintf("%s %s", s.path, shellQuote(encoded)))

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if isExitError(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("launching oracle script %q: %w", s.path, err)
}

// ThreadDelay implements Oracle.
func (s *Script) ThreadDelay() time.Duration {
	return s.thread
}

// Location implements Oracle.
func (s *Script) Location() string {
	return "script:" + s.path
}

func isExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

// shellQuote wraps s in single quotes for safe inclusion in the /bin/sh -c
// command line, escaping any single quote already present.
func shellQuote(s string) string {
	out := "'"
	for _, r := range s {
		if r == '\'' {
			out += `'\''`
		} else {
			out += string(r)
		}
	}
	return out + "'"
}
