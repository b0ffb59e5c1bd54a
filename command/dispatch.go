package command

import (
	"fmt"

	"github.com/gogpu/rhi"
)

// DispatchFunc executes one command against a renderer.
type DispatchFunc func(r rhi.Renderer, cmd Command) error

// as asserts cmd to the command type its dispatch function expects.
func as[T Command](cmd Command) (T, error) {
	c, ok := cmd.(T)
	if !ok {
		return c, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return c, nil
}

// dispatchTable maps each Kind to the function executing it.
var dispatchTable = [numKinds]DispatchFunc{
	KindSetGraphicsRootSignature: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetGraphicsRootSignature](cmd)
		if err == nil {
			r.SetGraphicsRootSignature(c.RootSignature)
		}
		return err
	},
	KindSetPipelineState: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetPipelineState](cmd)
		if err == nil {
			r.SetPipelineState(c.PipelineState)
		}
		return err
	},
	KindSetResourceGroup: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetResourceGroup](cmd)
		if err == nil {
			r.SetResourceGroup(c.Index, c.Group)
		}
		return err
	},
	KindSetVertexArray: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetVertexArray](cmd)
		if err == nil {
			r.SetVertexArray(c.VertexArray)
		}
		return err
	},
	KindSetViewports: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetViewports](cmd)
		if err == nil {
			r.SetViewports(c.Viewports)
		}
		return err
	},
	KindSetScissorRectangles: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetScissorRectangles](cmd)
		if err == nil {
			r.SetScissorRectangles(c.Rectangles)
		}
		return err
	},
	KindSetRenderTarget: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetRenderTarget](cmd)
		if err == nil {
			r.SetRenderTarget(c.Target)
		}
		return err
	},
	KindClear: func(r rhi.Renderer, cmd Command) error {
		c, err := as[Clear](cmd)
		if err == nil {
			r.Clear(c.Flags, c.Color, c.Depth, c.Stencil)
		}
		return err
	},
	KindDraw: func(r rhi.Renderer, cmd Command) error {
		c, err := as[Draw](cmd)
		if err == nil {
			r.Draw(c.Arguments)
		}
		return err
	},
	KindDrawIndexed: func(r rhi.Renderer, cmd Command) error {
		c, err := as[DrawIndexed](cmd)
		if err == nil {
			r.DrawIndexed(c.Arguments)
		}
		return err
	},
	KindDrawIndirect: func(r rhi.Renderer, cmd Command) error {
		c, err := as[DrawIndirect](cmd)
		if err == nil {
			r.DrawIndirect(c.Buffer, c.Offset, c.Count, c.Indexed)
		}
		return err
	},
	KindCopyUniformBufferData: func(r rhi.Renderer, cmd Command) error {
		c, err := as[CopyUniformBufferData](cmd)
		if err != nil {
			return err
		}
		return r.CopyUniformBufferData(c.Buffer, c.Data)
	},
	KindSetDebugMarker: func(r rhi.Renderer, cmd Command) error {
		c, err := as[SetDebugMarker](cmd)
		if err == nil {
			r.SetDebugMarker(c.Name)
		}
		return err
	},
	KindBeginDebugEvent: func(r rhi.Renderer, cmd Command) error {
		c, err := as[BeginDebugEvent](cmd)
		if err == nil {
			r.BeginDebugEvent(c.Name)
		}
		return err
	},
	KindEndDebugEvent: func(r rhi.Renderer, cmd Command) error {
		_, err := as[EndDebugEvent](cmd)
		if err == nil {
			r.EndDebugEvent()
		}
		return err
	},
}

// Dispatcher returns the dispatch function for k, or nil for an unknown kind.
func Dispatcher(k Kind) DispatchFunc {
	if k >= numKinds {
		return nil
	}
	return dispatchTable[k]
}
