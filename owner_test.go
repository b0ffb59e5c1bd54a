package rhi

import (
	"errors"
	"testing"
)

func TestCheckOwner(t *testing.T) {
	r := newStubRenderer("a")
	if !CheckOwner(r, nil, "group") {
		t.Error("nil resource rejected")
	}
	if !CheckOwner(r, newFakeResource(r), "group") {
		t.Error("own resource rejected")
	}
	if len(r.log.Lines()) != 0 {
		t.Errorf("unexpected log lines %q", r.log.Lines())
	}
}

func TestCheckOwnerLogPolicy(t *testing.T) {
	r := newStubRenderer("a")
	other := newStubRenderer("b")
	res := newFakeResource(other)
	res.SetDebugName("albedo")

	if CheckOwner(r, res, "resource group") {
		t.Fatal("foreign resource accepted")
	}
	if !r.log.Contains(`resource group: Texture2D "albedo" belongs to another renderer`) {
		t.Errorf("log lines = %q", r.log.Lines())
	}
	if res.RefCount() != 0 {
		t.Error("owner check took a reference")
	}
}

func TestCheckOwnerPanicPolicy(t *testing.T) {
	r := newStubRenderer("a")
	r.policy = OwnerPolicyPanic
	res := newFakeResource(newStubRenderer("b"))

	defer func() {
		v := recover()
		err, ok := v.(error)
		if !ok || !errors.Is(err, ErrWrongRenderer) {
			t.Fatalf("recovered %v, want ErrWrongRenderer", v)
		}
	}()
	CheckOwner(r, res, "vertex array")
}
