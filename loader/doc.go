// Package loader turns encoded assets into renderer resources.
//
// Images in PNG, JPEG, GIF, BMP, TIFF or WebP become RGBA8 textures, with
// an optional mip chain computed on the CPU:
//
//	tex, err := loader.TextureFile(r, "albedo.png", loader.WithMipmaps())
//
// Shader files are tagged by extension (.wgsl, .glsl, .essl, .hlsl, .spv)
// and compiled through the renderer's shader language:
//
//	vs, err := loader.ShaderFile(r.ShaderLanguage(), rhi.ShaderStageVertex, "mesh.wgsl")
//
// The loader holds no state; every call is independent and safe for
// concurrent use as far as the renderer allows.
package loader
