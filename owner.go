package rhi

import "fmt"

// OwnerPolicy decides what happens when a resource created by one renderer
// is handed to an object of another renderer.
type OwnerPolicy uint8

const (
	// OwnerPolicyLog reports the mismatch through the renderer Log and the
	// package logger, then continues without the foreign resource: the slot
	// stays empty and no reference is taken.
	OwnerPolicyLog OwnerPolicy = iota
	// OwnerPolicyPanic treats the mismatch as a programming error.
	OwnerPolicyPanic
)

// String returns the policy name.
func (p OwnerPolicy) String() string {
	if p == OwnerPolicyPanic {
		return "panic"
	}
	return "log"
}

// CheckOwner reports whether res may be used by r. A nil resource always
// passes. On mismatch it applies r's owner policy and returns false.
func CheckOwner(r Renderer, res Resource, context string) bool {
	if res == nil || res.Renderer() == r {
		return true
	}
	msg := fmt.Sprintf("%s: %s %q belongs to another renderer", context, res.ResourceType(), res.DebugName())
	if r.OwnerPolicy() == OwnerPolicyPanic {
		panic(fmt.Errorf("%w: %s", ErrWrongRenderer, msg))
	}
	r.Log().PrintLine("rhi: %s, skipped", msg)
	Logger().Warn("rhi: resource owner mismatch",
		"context", context,
		"type", res.ResourceType().String(),
		"backend", r.Name())
	return false
}
