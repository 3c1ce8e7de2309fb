package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := NotFound("project")
	wrapped := Wrap(base, "loading failed")

	if GetCode(wrapped) != CodeNotFound {
		t.Errorf("Wrap should keep the inner code, got %s", GetCode(wrapped))
	}
	if !HasCode(wrapped, CodeNotFound) {
		t.Error("HasCode should see through the wrap")
	}
	if wrapped.Error() != "loading failed: project not found" {
		t.Errorf("Unexpected message: %q", wrapped.Error())
	}
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap(stderrors.New("disk full"), "failed to store dataset")
	if GetCode(wrapped) != CodeInternalError {
		t.Errorf("Plain errors should wrap as INTERNAL_ERROR, got %s", GetCode(wrapped))
	}
}

func TestWrap_NilPassthrough(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrapping nil should stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf of nil should stay nil")
	}
	if WithCode(CodeTimeout, nil) != nil {
		t.Error("WithCode of nil should stay nil")
	}
}

func TestWithCode_Overrides(t *testing.T) {
	err := WithCode(CodeInvalidArgument, stderrors.New("both ranks and categories"))
	if GetCode(err) != CodeInvalidArgument {
		t.Errorf("Expected INVALID_ARGUMENT, got %s", GetCode(err))
	}
	if err.Error() != "both ranks and categories" {
		t.Errorf("Message should survive, got %q", err.Error())
	}
}

func TestGetCode_Unknown(t *testing.T) {
	if GetCode(stderrors.New("plain")) != "UNKNOWN" {
		t.Error("Plain errors should report UNKNOWN")
	}
	if HasCode(stderrors.New("plain"), CodeNotFound) {
		t.Error("Plain errors carry no code")
	}
}

func TestUnwrap_ChainsToCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, "database unreachable")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the original cause")
	}
}
