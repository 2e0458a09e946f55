package config

import "testing"

func TestParseProxyCredentialsSplitsOnFirstColon(t *testing.T) {
	p, err := ParseProxyCredentials("alice:p@ss:word")
	if err != nil {
		t.Fatalf("ParseProxyCredentials: %v", err)
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want %q", p.Username, "alice")
	}
	if p.Password != "p@ss:word" {
		t.Errorf("Password = %q, want %q", p.Password, "p@ss:word")
	}
}

func TestParseProxyCredentialsRejectsMissingColon(t *testing.T) {
	if _, err := ParseProxyCredentials("alice"); err == nil {
		t.Fatal("expected error for credentials with no colon")
	}
}

func TestParseProxyCredentialsRejectsEmptyUsername(t *testing.T) {
	if _, err := ParseProxyCredentials(":secret"); err == nil {
		t.Fatal("expected error for an empty username")
	}
}
