// Package command records renderer commands for deferred submission.
//
// A Bucket stores commands in the order they are recorded. Each entry pairs
// the command with a dispatch function chosen from a table keyed by the
// command's Kind when the command is recorded, so submission never switches
// on the command type. Submit replays the entries strictly in recorded
// order against any rhi.Renderer; the bucket never reorders, merges or
// drops commands. Sorting by a state key is left to the caller.
//
// Every resource a recorded command names is referenced until the bucket
// is Reset, so a command can never outlive what it draws with. Uniform
// payloads are copied into memory from the bucket's allocator when they
// are recorded.
//
// # Example
//
//	b := command.NewBucket(nil)
//	b.SetGraphicsRootSignature(rootSignature)
//	b.SetPipelineState(pipeline)
//	b.SetVertexArray(mesh)
//	b.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1})
//
//	if err := r.BeginScene(); err == nil {
//	    b.Submit(r)
//	    r.EndScene()
//	}
//	b.Reset()
package command
