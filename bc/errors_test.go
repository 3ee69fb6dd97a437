package bc_test

import (
	"errors"
	"testing"

	"github.com/blockcomp/bc-encoder/bc"
)

func TestNewBC7Settings_BadProfile(t *testing.T) {
	_, err := bc.NewBC7Settings("nonsense")
	if err == nil {
		t.Fatalf("NewBC7Settings(bad profile): expected error, got nil")
	}
	var bcErr *bc.Error
	if !errors.As(err, &bcErr) {
		t.Fatalf("NewBC7Settings(bad profile): error is not *bc.Error: %v", err)
	}
	if bcErr.Code != bc.ErrBadProfile {
		t.Fatalf("NewBC7Settings(bad profile): code = %v, want ErrBadProfile", bcErr.Code)
	}
}

func TestNewBC6HSettings_BadProfile(t *testing.T) {
	_, err := bc.NewBC6HSettings("nonsense")
	if err == nil {
		t.Fatalf("NewBC6HSettings(bad profile): expected error, got nil")
	}
	if code := bc.ErrorCodeOf(err); code != bc.ErrBadProfile {
		t.Fatalf("ErrorCodeOf: got %v, want ErrBadProfile", code)
	}
}

func TestErrorCodeOf_Nil(t *testing.T) {
	if code := bc.ErrorCodeOf(nil); code != 0 {
		t.Fatalf("ErrorCodeOf(nil) = %v, want 0", code)
	}
}
