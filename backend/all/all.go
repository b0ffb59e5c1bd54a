// Package all registers every backend and every hal device backend
// available on the platform.
//
//	import _ "github.com/gogpu/rhi/backend/all"
//
//	r, err := rhi.Default()
package all

import (
	_ "github.com/gogpu/wgpu/hal/allbackends" // hal devices

	_ "github.com/gogpu/rhi/backend/direct3d11"
	_ "github.com/gogpu/rhi/backend/direct3d12"
	_ "github.com/gogpu/rhi/backend/direct3d9"
	_ "github.com/gogpu/rhi/backend/null"
	_ "github.com/gogpu/rhi/backend/opengl"
	_ "github.com/gogpu/rhi/backend/opengles"
	_ "github.com/gogpu/rhi/backend/vulkan"
)
