package oracle

import (
	"context"
	"os"
	"testing"
)

func writeExecutable(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o755)
}

func TestScriptAskValidationExitCodes(t *testing.T) {
	s := NewScript("true", func(b []byte) string { return "" }, 0)
	valid, err := s.AskValidation(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("AskValidation: %v", err)
	}
	if !valid {
		t.Error("exit code 0 should classify as valid padding")
	}

	s = NewScript("false", func(b []byte) string { return "" }, 0)
	valid, err = s.AskValidation(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("AskValidation: %v", err)
	}
	if valid {
		t.Error("non-zero exit code should classify as invalid padding, not an error")
	}
}

func TestScriptAskValidationLaunchFailureIsError(t *testing.T) {
	s := NewScript("/no/such/executable-xyz", func(b []byte) string { return "" }, 0)
	_, err := s.AskValidation(context.Background(), []byte{0x01})
	if err == nil {
		t.Fatal("expected an error when the oracle executable cannot be launched")
	}
}

func TestScriptPassesEncodedCiphertextAsArgument(t *testing.T) {
	dir := t.TempDir()
	script := dir + "/check.sh"
	if err := writeExecutable(script, "#!/bin/sh\ntest \"$1\" = deadbeef\n"); err != nil {
		t.Fatalf("writing fixture script: %v", err)
	}

	encode := func(b []byte) string { return "deadbeef" }
	s := NewScript(script, encode, 0)

	valid, err := s.AskValidation(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("AskValidation: %v", err)
	}
	if !valid {
		t.Error("expected the fixture script to see the encoded argument and exit 0")
	}
}
