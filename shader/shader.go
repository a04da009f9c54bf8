package shader

// ────────────────────────────────── Vertex stage ─────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// ───────────────────────────────── Fragment stage ────────────────────────────────

// The fragment program is written once in the WebGL2 dialect and translated to
// the host's GLSL flavour before compilation. Every uniform below is read on the
// main path so none is optimized away; a missing location is a link failure.
//
// Metal mirrors this program in Go; the two must be changed together.
const fragmentShaderSource = `#version 300 es
precision highp float;

out vec4 fragColor;

uniform sampler2D u_tex;
uniform vec2  u_resolution;
uniform float u_ratio;
uniform float u_time;
uniform float u_seed;
uniform float u_scale;
uniform float u_refraction;
uniform float u_blur;
uniform float u_liquid;
uniform float u_brightness;
uniform float u_contrast;
uniform float u_angle;
uniform float u_fresnel;
uniform float u_sharpness;
uniform float u_wave;
uniform float u_noiseScale;
uniform float u_chroma;
uniform float u_distortion;
uniform float u_contour;
uniform vec3  u_light;
uniform vec3  u_dark;
uniform vec3  u_tint;

float hash(vec3 p) {
    p = fract(p * 0.1031 + u_seed * 0.0173);
    p += dot(p, p.zyx + 31.32);
    return fract((p.x + p.y) * p.z);
}

float noise(vec3 p) {
    vec3 i = floor(p);
    vec3 f = fract(p);
    vec3 u = f * f * (3.0 - 2.0 * f);
    float n000 = hash(i);
    float n100 = hash(i + vec3(1.0, 0.0, 0.0));
    float n010 = hash(i + vec3(0.0, 1.0, 0.0));
    float n110 = hash(i + vec3(1.0, 1.0, 0.0));
    float n001 = hash(i + vec3(0.0, 0.0, 1.0));
    float n101 = hash(i + vec3(1.0, 0.0, 1.0));
    float n011 = hash(i + vec3(0.0, 1.0, 1.0));
    float n111 = hash(i + vec3(1.0, 1.0, 1.0));
    return mix(mix(mix(n000, n100, u.x), mix(n010, n110, u.x), u.y),
               mix(mix(n001, n101, u.x), mix(n011, n111, u.x), u.y), u.z);
}

// cross warp: each axis of a moves by the noise of a cyclic permutation of b
vec3 cw(vec3 a, vec3 b) {
    return a + vec3(noise(b.yzx), noise(b.zxy), noise(b)) - 0.5;
}

// self warp
vec3 sw(vec3 p, float k) {
    return mix(p, cw(p, p), k);
}

vec3 flow(vec3 p, float t) {
    vec3 q = sw(p + vec3(0.0, 0.0, t), u_liquid);
    vec3 r = cw(q, p.zxy + vec3(t * 0.5, -t * 0.3, 0.0));
    r = sw(r * 1.3, u_liquid * 0.5);
    return cw(r, q.yzx - t * 0.2);
}

float mG(float hi, float lo, float t, float sharp, float cv) {
    float w = mix(0.12, 0.01, clamp(sharp, 0.0, 1.0)) + u_blur * 0.02;
    float s = min((0.16 + 0.06 * cv) / max(u_scale, 0.1), 0.22);
    float e = 0.5 - 1.9 * s;
    float c = lo;
    c = mix(c, hi, smoothstep(e - w, e + w, t));
    e += s;
    c = mix(c, lo, smoothstep(e - w, e + w, t));
    e += 0.6 * s;
    c = mix(c, hi, smoothstep(e - w, e + w, t));
    e += 1.4 * s;
    c = mix(c, lo, smoothstep(e - w, e + w, t));
    e += 0.8 * s;
    c = mix(c, hi, smoothstep(e - w, e + w, t));
    return c;
}

float coverage(vec2 uv) {
    return texture(u_tex, uv).r;
}

void main() {
    vec2 uv = gl_FragCoord.xy / u_resolution;
    float t = u_time * 0.001;

    vec2 c = uv - vec2(0.5, 0.55);
    c += c.yx * 0.35;
    float cv = length(c);
    float fres = pow(clamp(1.0 - cv * cv, 0.0, 1.0), u_fresnel);

    float a = radians(u_angle);
    vec2 p2 = mat2(cos(a), sin(a), -sin(a), cos(a)) * (uv - 0.5);
    p2.x *= u_ratio;

    vec2 d = vec2(noise(vec3(p2 * 3.0, t)), noise(vec3(p2 * 3.0 + 7.1, t))) - 0.5;
    vec2 suv = uv + d * u_distortion * 0.02;
    float cover = coverage(suv);
    float b = u_blur * 0.01;
    float soft = 0.25 * (coverage(suv + vec2(b, 0.0)) + coverage(suv - vec2(b, 0.0)) +
                         coverage(suv + vec2(0.0, b)) + coverage(suv - vec2(0.0, b)));

    vec3 w = flow(vec3(p2 * u_noiseScale * 2.0, t * 0.5), t);
    float n = noise(w * 1.5);
    float wave = u_wave * 0.5 * sin(p2.x * 9.424778 + t * 2.0);
    float x = n * u_scale + wave + u_contour * (1.0 - soft) * 0.5 + cv * 0.25;
    float band = abs(fract(x * 0.5) * 2.0 - 1.0);

    float sharp = clamp(u_sharpness * (0.75 - 0.25 * cv), 0.0, 1.0);
    float disp = u_refraction * u_chroma * 0.05;
    float bias = cv * 0.03;
    vec3 col = vec3(
        mG(u_light.r, u_dark.r, band + disp + bias, sharp, cv),
        mG(u_light.g, u_dark.g, band + 0.35 * disp + 0.5 * bias, sharp, cv),
        mG(u_light.b, u_dark.b, band - 0.8 * disp - 0.25 * bias, sharp, cv));

    col = (col - 0.5) * u_contrast + 0.5;
    col *= u_brightness;
    col = mix(col, vec3(1.0) - u_tint, 0.2);
    col = clamp(col, 0.0, 1.0);

    vec2 edge = min(suv, 1.0 - suv);
    float border = smoothstep(0.0, 0.02, min(edge.x, edge.y));
    float alpha = cover * fres * border;
    fragColor = vec4(col * alpha, alpha);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

// GetFragmentShader returns the liquid metal program in the WebGL2 dialect.
func GetFragmentShader() string {
	return fragmentShaderSource
}
