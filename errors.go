package rhi

import "errors"

// Common renderer errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("rhi: backend not available")

	// ErrNoDevice is returned when no native device could be opened.
	ErrNoDevice = errors.New("rhi: no native device")

	// ErrUnsupported is returned when the backend lacks a requested feature.
	ErrUnsupported = errors.New("rhi: unsupported by backend")

	// ErrBufferOverflow is returned when an upload exceeds the buffer capacity.
	ErrBufferOverflow = errors.New("rhi: data exceeds buffer capacity")

	// ErrInvalidSize is returned when a resource size or data length is invalid.
	ErrInvalidSize = errors.New("rhi: invalid size")

	// ErrInvalidDescriptor is returned when a descriptor holds out-of-range values.
	ErrInvalidDescriptor = errors.New("rhi: invalid descriptor")

	// ErrResourceDestroyed is returned by operations on a destroyed resource.
	ErrResourceDestroyed = errors.New("rhi: resource destroyed")

	// ErrWrongRenderer is returned when a resource belongs to another renderer.
	ErrWrongRenderer = errors.New("rhi: resource owned by another renderer")

	// ErrNotReady is returned when a resource failed to build (e.g. an unlinked program).
	ErrNotReady = errors.New("rhi: resource not ready")

	// ErrRendererClosed is returned by a renderer after Close.
	ErrRendererClosed = errors.New("rhi: renderer closed")
)
