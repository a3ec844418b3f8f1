package native

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// compositeWGSL draws one textured quad with the window paint
// attributes applied. The vertex stage expands a triangle strip of four
// vertices from the corners in params.
const compositeWGSL = `
struct Params {
    rect: vec4<f32>,
    uv: vec4<f32>,
    // opacity, brightness, saturation, unused
    paint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var content: texture_2d<f32>;
@group(0) @binding(2) var content_sampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    let corner = vec2<f32>(f32(index & 1u), f32(index >> 1u));
    var out: VertexOutput;
    out.position = vec4<f32>(mix(params.rect.xy, params.rect.zw, corner), 0.0, 1.0);
    out.uv = mix(params.uv.xy, params.uv.zw, corner);
    return out;
}

@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
    let c = textureSample(content, content_sampler, input.uv);
    let luma = dot(c.rgb, vec3<f32>(0.2126, 0.7152, 0.0722));
    let gray = vec3<f32>(luma, luma, luma);
    let s = params.paint.z;
    let rgb = mix(gray, c.rgb, vec3<f32>(s, s, s)) * params.paint.y;
    return vec4<f32>(rgb, c.a) * params.paint.x;
}
`

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShader, err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

func createCompositeShader(device hal.Device) (hal.ShaderModule, error) {
	code, err := compileShaderToSPIRV(compositeWGSL)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "composite",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create module: %w", ErrShader, err)
	}
	return module, nil
}
