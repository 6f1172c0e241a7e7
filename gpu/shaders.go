package gpu

// Standard shaders shared by fixed-function style passes. Kept as
// WGSL source; the engine compiles and caches per program.

// DrawUnitQuadTexcoordVS emits a full-screen triangle strip (4
// vertices) with texture coordinates.
func DrawUnitQuadTexcoordVS() Shader {
	const src = `
		struct VSOut {
			@builtin(position) pos: vec4<f32>,
			@location(0) uv: vec2<f32>,
		}

		@vertex
		fn vs_main(@builtin(vertex_index) ix: u32) -> VSOut {
			// Strip order: (-1,-1) (1,-1) (-1,1) (1,1)
			let x = f32(ix & 1u) * 2.0 - 1.0;
			let y = f32(ix >> 1u) * 2.0 - 1.0;
			var out: VSOut;
			out.pos = vec4(x, y, 1.0, 1.0);
			out.uv = vec2((x + 1.0) * 0.5, (y + 1.0) * 0.5);
			return out;
		}`
	return Shader{Name: "drawUnitQuadTexcoord", Source: src}
}

// NopFS is a fragment stage with no color output, used when only
// depth/stencil side effects are wanted.
func NopFS() Shader {
	const src = `
		@fragment
		fn fs_main() {
		}`
	return Shader{Name: "nop", Source: src}
}

// DrawColorFS outputs a single uniform color, used by the debug
// bounds overlay.
func DrawColorFS() Shader {
	const src = `
		@group(0) @binding(0)
		var<uniform> color: vec4<f32>;

		@fragment
		fn fs_main() -> @location(0) vec4<f32> {
			return color;
		}`
	return Shader{Name: "drawColor", Source: src}
}
