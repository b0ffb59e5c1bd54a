// Package core implements the rhi resource model over a gogpu/wgpu hal
// device. Every backend package is a Profile on top of it: the profile
// supplies the native token tables, the state bind call sequences, the
// shader translation target and the capabilities, while core owns the
// objects, their lifetime and the draw path.
//
// Objects hold hal handles. A nil handle means "not allocated"; releasing
// a handle sets it back to nil, so destroying twice is a no-op.
package core
