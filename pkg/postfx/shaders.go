package postfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// Shader names double as material names
const (
	ShaderCopy        = "copy"
	ShaderScreen      = "screen"
	ShaderConvolution = "convolution"
	ShaderBloom       = "bloom"
	ShaderFilm        = "film"
	ShaderDotScreen   = "dotscreen"
	ShaderHalftone    = "halftone"
	ShaderGlitch      = "glitch"
	ShaderBokeh       = "bokeh"
	ShaderDepth       = "depth"
	ShaderNormal      = "normal"
	ShaderSSAO        = "ssao"
	ShaderSSAODepth   = "ssao_depth"
	ShaderSSAOBlur    = "ssao_blur"
	ShaderBasic       = "basic"
)

// Vertex shader for every full-screen quad
const quadVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;

out vec2 vUv;

void main() {
    vUv = aTexCoord;
    gl_Position = vec4(aPos, 1.0);
}
`

// Vertex shader for scene geometry
const sceneVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 modelMatrix;
uniform mat4 viewMatrix;
uniform mat4 projectionMatrix;
uniform mat3 normalMatrix;

out vec3 vNormal;
out vec3 vViewPosition;
out vec2 vHighPrecisionZW;

void main() {
    vec4 mvPosition = viewMatrix * modelMatrix * vec4(aPos, 1.0);
    vNormal = normalize(normalMatrix * aNormal);
    vViewPosition = -mvPosition.xyz;
    gl_Position = projectionMatrix * mvPosition;
    vHighPrecisionZW = gl_Position.zw;
}
`

const copyFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform float opacity;

void main() {
    vec4 texel = texture(tDiffuse, vUv);
    FragColor = opacity * texel;
}
`

const convolutionFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform vec2 uImageIncrement;
uniform float cKernel[KERNEL_SIZE_INT];

void main() {
    vec2 imageCoord = vUv - ((KERNEL_SIZE_FLOAT - 1.0) / 2.0) * uImageIncrement;
    vec4 sum = vec4(0.0);
    for (int i = 0; i < KERNEL_SIZE_INT; i++) {
        sum += texture(tDiffuse, imageCoord) * cKernel[i];
        imageCoord += uImageIncrement;
    }
    FragColor = sum;
}
`

const bloomFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform sampler2D tBloom;
uniform float strength;

void main() {
    vec4 base = texture(tDiffuse, vUv);
    vec4 glow = texture(tBloom, vUv);
    FragColor = vec4(base.rgb + strength * glow.rgb, base.a);
}
`

const filmFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform float time;
uniform float nIntensity;
uniform float sIntensity;
uniform float sCount;
uniform bool grayscale;

float rand(vec2 co) {
    return fract(sin(dot(co.xy, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    vec4 base = texture(tDiffuse, vUv);
    float dx = rand(vUv + mod(time, 10.0));
    vec3 result = base.rgb + base.rgb * clamp(0.1 + dx, 0.0, 1.0);
    vec2 sc = vec2(sin(vUv.y * sCount), cos(vUv.y * sCount));
    result += base.rgb * vec3(sc.x, sc.y, sc.x) * sIntensity;
    result = base.rgb + clamp(nIntensity, 0.0, 1.0) * (result - base.rgb);
    if (grayscale) {
        result = vec3(result.r * 0.3 + result.g * 0.59 + result.b * 0.11);
    }
    FragColor = vec4(result, base.a);
}
`

const dotScreenFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform vec2 center;
uniform float angle;
uniform float scale;
uniform vec2 tSize;

float pattern() {
    float s = sin(angle), c = cos(angle);
    vec2 tex = vUv * tSize - center;
    vec2 point = vec2(c * tex.x - s * tex.y, s * tex.x + c * tex.y) * scale;
    return (sin(point.x) * sin(point.y)) * 4.0;
}

void main() {
    vec4 color = texture(tDiffuse, vUv);
    float average = (color.r + color.g + color.b) / 3.0;
    FragColor = vec4(vec3(average * 10.0 - 5.0 + pattern()), color.a);
}
`

const halftoneFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

#define SQRT2_MINUS_ONE 0.41421356
#define SQRT2_HALF_MINUS_ONE 0.20710678
#define PI2 6.28318531

uniform sampler2D tDiffuse;
uniform int shape;
uniform float radius;
uniform float rotateR;
uniform float rotateG;
uniform float rotateB;
uniform float scatter;
uniform float width;
uniform float height;
uniform float blending;
uniform int blendingMode;
uniform bool greyscale;
uniform bool disable;

float rand(vec2 seed) {
    return fract(sin(dot(seed, vec2(12.9898, 78.233))) * 43758.5453);
}

float hypot(float x, float y) {
    return sqrt(x * x + y * y);
}

float distanceToDotRadius(float channel, vec2 coord, vec2 normal, vec2 p, float angle, float radMax) {
    float dist = hypot(coord.x - p.x, coord.y - p.y);
    float rad = channel;
    if (shape == 1) {
        rad = pow(abs(rad), 1.125) * radMax;
    } else if (shape == 2) {
        rad = pow(abs(rad), 1.125) * radMax;
        if (dist != 0.0) {
            float dotP = abs((p.x - coord.x) / dist * normal.x + (p.y - coord.y) / dist * normal.y);
            dist = (dist * (1.0 - SQRT2_HALF_MINUS_ONE)) + dotP * dist * SQRT2_MINUS_ONE;
        }
    } else if (shape == 3) {
        rad = pow(abs(rad), 1.5) * radMax;
        float dotP = (p.x - coord.x) * normal.x + (p.y - coord.y) * normal.y;
        dist = hypot(normal.x * dotP, normal.y * dotP);
    } else if (shape == 4) {
        rad = pow(abs(rad), 1.45) * radMax;
        float dotP = (p.x - coord.x) * normal.x + (p.y - coord.y) * normal.y;
        dist = max(abs(dotP), abs((p.x - coord.x) * normal.y - (p.y - coord.y) * normal.x));
    }
    return rad - dist;
}

float channelAt(vec2 p, float angle, int channel) {
    vec2 normal = vec2(cos(angle), sin(angle));
    vec2 offset = vec2(normal.x * radius * 0.5 + normal.y * radius * 0.5,
                       normal.y * radius * 0.5 - normal.x * radius * 0.5);
    vec2 cell = floor((p + offset) / radius) * radius + radius * 0.5;
    vec2 sp = cell + (rand(cell) - 0.5) * scatter * radius;
    vec4 texel = texture(tDiffuse, vec2(sp.x / width, sp.y / height));
    float value = channel == 0 ? texel.r : (channel == 1 ? texel.g : texel.b);
    float d = distanceToDotRadius(value, p, normal, sp, angle, radius);
    return clamp(d, 0.0, 1.0);
}

vec3 blendColour(float a, float b, float t) {
    if (blendingMode == 1) return vec3(mix(a, b, t));
    if (blendingMode == 2) return vec3(mix(a, a * b, t));
    if (blendingMode == 3) return vec3(mix(a, min(a + b, 1.0), t));
    if (blendingMode == 4) return vec3(mix(a, max(a, b), t));
    return vec3(mix(a, min(a, b), t));
}

void main() {
    vec4 colour = texture(tDiffuse, vUv);
    if (disable) {
        FragColor = colour;
        return;
    }
    vec2 p = vec2(vUv.x * width, vUv.y * height);
    vec3 result = vec3(channelAt(p, rotateR, 0), channelAt(p, rotateG, 1), channelAt(p, rotateB, 2));
    result = vec3(blendColour(result.r, colour.r, blending).r,
                  blendColour(result.g, colour.g, blending).g,
                  blendColour(result.b, colour.b, blending).b);
    if (greyscale) {
        result = vec3(0.299 * result.r + 0.587 * result.g + 0.114 * result.b);
    }
    FragColor = vec4(result, colour.a);
}
`

const glitchFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform sampler2D tDisp;
uniform int byp;
uniform float amount;
uniform float angle;
uniform float seed;
uniform float seed_x;
uniform float seed_y;
uniform float distortion_x;
uniform float distortion_y;
uniform float col_s;

float rand(vec2 co) {
    return fract(sin(dot(co.xy, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    if (byp != 0) {
        FragColor = texture(tDiffuse, vUv);
        return;
    }
    vec2 p = vUv;
    float xs = floor(gl_FragCoord.x / 0.5);
    float ys = floor(gl_FragCoord.y / 0.5);
    vec4 normal = texture(tDisp, p * seed * seed);
    if (p.y < distortion_x + col_s && p.y > distortion_x - col_s * seed) {
        p.x = seed_x > 0.0 ? p.x - distortion_y : p.x + distortion_y;
    }
    if (p.x < distortion_y + col_s && p.x > distortion_y - col_s * seed) {
        p.y = seed_y > 0.0 ? p.y - distortion_x : p.y + distortion_x;
    }
    p.x += normal.x * seed_x * (seed / 5.0);
    p.y += normal.y * seed_y * (seed / 5.0);
    vec2 offset = amount * vec2(cos(angle), sin(angle));
    vec4 cr = texture(tDiffuse, p + offset);
    vec4 cga = texture(tDiffuse, p);
    vec4 cb = texture(tDiffuse, p - offset);
    vec4 color = vec4(cr.r, cga.g, cb.b, cga.a);
    vec4 snow = 200.0 * amount * vec4(rand(vec2(xs * seed, ys * seed * 50.0)) * 0.2);
    FragColor = color + snow;
}
`

const bokehFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tColor;
uniform sampler2D tDepth;
uniform float maxblur;
uniform float aperture;
uniform float nearClip;
uniform float farClip;
uniform float focus;
uniform float aspect;

float unpackRGBAToDepth(vec4 v) {
    return dot(v, vec4(1.0, 1.0 / 255.0, 1.0 / 65025.0, 1.0 / 16581375.0));
}

float viewZFromDepth(float depth) {
    return (nearClip * farClip) / ((farClip - nearClip) * depth - farClip);
}

void main() {
    vec2 aspectcorrect = vec2(1.0, aspect);
    float viewZ = viewZFromDepth(unpackRGBAToDepth(texture(tDepth, vUv)));
    float factor = focus + viewZ;
    vec2 dofblur = vec2(clamp(factor * aperture, -maxblur, maxblur));
    vec2 dofblur9 = dofblur * 0.9;
    vec2 dofblur7 = dofblur * 0.7;
    vec2 dofblur4 = dofblur * 0.4;

    vec4 col = texture(tColor, vUv);
    col += texture(tColor, vUv + (vec2(0.0, 0.4) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.15, 0.37) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.29, 0.29) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.37, 0.15) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.40, 0.0) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.37, -0.15) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.29, -0.29) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.15, -0.37) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.0, -0.4) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.15, 0.37) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.29, 0.29) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.37, 0.15) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.4, 0.0) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.37, -0.15) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(-0.29, -0.29) * aspectcorrect) * dofblur);
    col += texture(tColor, vUv + (vec2(0.15, -0.37) * aspectcorrect) * dofblur);

    col += texture(tColor, vUv + (vec2(0.15, 0.37) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(-0.37, 0.15) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(0.37, -0.15) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(-0.15, -0.37) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(-0.15, 0.37) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(0.37, 0.15) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(-0.37, -0.15) * aspectcorrect) * dofblur9);
    col += texture(tColor, vUv + (vec2(0.15, -0.37) * aspectcorrect) * dofblur9);

    col += texture(tColor, vUv + (vec2(0.29, 0.29) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(0.40, 0.0) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(0.29, -0.29) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(0.0, -0.4) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(-0.29, 0.29) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(-0.4, 0.0) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(-0.29, -0.29) * aspectcorrect) * dofblur7);
    col += texture(tColor, vUv + (vec2(0.0, 0.4) * aspectcorrect) * dofblur7);

    col += texture(tColor, vUv + (vec2(0.29, 0.29) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(0.4, 0.0) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(0.29, -0.29) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(0.0, -0.4) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(-0.29, 0.29) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(-0.4, 0.0) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(-0.29, -0.29) * aspectcorrect) * dofblur4);
    col += texture(tColor, vUv + (vec2(0.0, 0.4) * aspectcorrect) * dofblur4);

    FragColor = col / 41.0;
    FragColor.a = 1.0;
}
`

// Packs gl_FragCoord depth into RGBA8
const depthFragmentShader = `
#version 410 core
in vec2 vHighPrecisionZW;
out vec4 FragColor;

vec4 packDepthToRGBA(float v) {
    vec4 r = vec4(fract(v * vec4(1.0, 255.0, 65025.0, 16581375.0)));
    r.xyz -= r.yzw * (1.0 / 255.0);
    return r;
}

void main() {
    float fragCoordZ = 0.5 * vHighPrecisionZW[0] / vHighPrecisionZW[1] + 0.5;
    FragColor = packDepthToRGBA(fragCoordZ);
}
`

// Encodes view-space normals into [0, 1]
const normalFragmentShader = `
#version 410 core
in vec3 vNormal;
out vec4 FragColor;

uniform float opacity;

void main() {
    FragColor = vec4(normalize(vNormal) * 0.5 + 0.5, opacity);
}
`

const ssaoFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tNormal;
uniform sampler2D tDepth;
uniform sampler2D tNoise;
uniform vec3 kernel[KERNEL_SIZE];
uniform vec2 resolution;
uniform float cameraNear;
uniform float cameraFar;
uniform mat4 cameraProjectionMatrix;
uniform mat4 cameraInverseProjectionMatrix;
uniform float kernelRadius;
uniform float minDistance;
uniform float maxDistance;

float getDepth(const in vec2 screenPosition) {
    return texture(tDepth, screenPosition).x;
}

float getLinearDepth(const in vec2 screenPosition) {
    float fragCoordZ = texture(tDepth, screenPosition).x;
    float viewZ = (cameraNear * cameraFar) / ((cameraFar - cameraNear) * fragCoordZ - cameraFar);
    return (viewZ + cameraNear) / (cameraNear - cameraFar);
}

float getViewZ(const in float depth) {
    return (cameraNear * cameraFar) / ((cameraFar - cameraNear) * depth - cameraFar);
}

vec3 getViewPosition(const in vec2 screenPosition, const in float depth, const in float viewZ) {
    float clipW = cameraProjectionMatrix[2][3] * viewZ + cameraProjectionMatrix[3][3];
    vec4 clipPosition = vec4((vec3(screenPosition, depth) - 0.5) * 2.0, 1.0);
    clipPosition *= clipW;
    return (cameraInverseProjectionMatrix * clipPosition).xyz;
}

vec3 getViewNormal(const in vec2 screenPosition) {
    return normalize(texture(tNormal, screenPosition).xyz * 2.0 - 1.0);
}

void main() {
    float depth = getDepth(vUv);
    if (depth == 1.0) {
        FragColor = vec4(1.0);
        return;
    }
    float viewZ = getViewZ(depth);
    vec3 viewPosition = getViewPosition(vUv, depth, viewZ);
    vec3 viewNormal = getViewNormal(vUv);

    vec2 noiseScale = vec2(resolution.x / 4.0, resolution.y / 4.0);
    vec3 random = vec3(texture(tNoise, vUv * noiseScale).r);

    vec3 tangent = normalize(random - viewNormal * dot(random, viewNormal));
    vec3 bitangent = cross(viewNormal, tangent);
    mat3 kernelMatrix = mat3(tangent, bitangent, viewNormal);

    float occlusion = 0.0;
    for (int i = 0; i < KERNEL_SIZE; i++) {
        vec3 sampleVector = kernelMatrix * kernel[i];
        vec3 samplePoint = viewPosition + (sampleVector * kernelRadius);

        vec4 samplePointNDC = cameraProjectionMatrix * vec4(samplePoint, 1.0);
        samplePointNDC /= samplePointNDC.w;
        vec2 samplePointUv = samplePointNDC.xy * 0.5 + 0.5;

        float realDepth = getLinearDepth(samplePointUv);
        float sampleDepth = (samplePoint.z + cameraNear) / (cameraNear - cameraFar);
        float delta = sampleDepth - realDepth;
        if (delta > minDistance && delta < maxDistance) {
            occlusion += 1.0;
        }
    }
    occlusion = clamp(occlusion / float(KERNEL_SIZE), 0.0, 1.0);
    FragColor = vec4(vec3(1.0 - occlusion), 1.0);
}
`

const ssaoDepthFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDepth;
uniform float cameraNear;
uniform float cameraFar;

void main() {
    float fragCoordZ = texture(tDepth, vUv).x;
    float viewZ = (cameraNear * cameraFar) / ((cameraFar - cameraNear) * fragCoordZ - cameraFar);
    float depth = (viewZ + cameraNear) / (cameraNear - cameraFar);
    FragColor = vec4(vec3(1.0 - depth), 1.0);
}
`

const ssaoBlurFragmentShader = `
#version 410 core
in vec2 vUv;
out vec4 FragColor;

uniform sampler2D tDiffuse;
uniform vec2 resolution;

void main() {
    vec2 texelSize = 1.0 / resolution;
    float result = 0.0;
    for (int i = -2; i <= 2; i++) {
        for (int j = -2; j <= 2; j++) {
            vec2 offset = vec2(float(i), float(j)) * texelSize;
            result += texture(tDiffuse, vUv + offset).r;
        }
    }
    FragColor = vec4(vec3(result / 25.0), 1.0);
}
`

const basicFragmentShader = `
#version 410 core
in vec3 vNormal;
in vec3 vViewPosition;
out vec4 FragColor;

uniform vec3 color;
uniform vec3 lightDirection;
uniform float ambient;

void main() {
    float diffuse = max(dot(normalize(vNormal), normalize(lightDirection)), 0.0);
    FragColor = vec4(color * (ambient + (1.0 - ambient) * diffuse), 1.0);
}
`

// CopyShader samples tDiffuse scaled by opacity
func CopyShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderCopy,
		Uniforms: gfx.Uniforms{
			"tDiffuse": {Value: nil},
			"opacity":  {Value: float32(1)},
		},
		Vertex:   quadVertexShader,
		Fragment: copyFragmentShader,
	}
}

// ScreenShader is the copy shader used for the final blit
func ScreenShader() gfx.ShaderSource {
	src := CopyShader()
	src.Name = ShaderScreen
	return src
}

// ConvolutionShader is a 1D separable blur of kernelSize taps
func ConvolutionShader(kernelSize int) gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderConvolution,
		Defines: map[string]string{
			"KERNEL_SIZE_FLOAT": formatFloat(float32(kernelSize)),
			"KERNEL_SIZE_INT":   formatInt(kernelSize),
		},
		Uniforms: gfx.Uniforms{
			"tDiffuse":        {Value: nil},
			"uImageIncrement": {Value: mgl32.Vec2{0.001953125, 0}},
			"cKernel":         {Value: []float32{}},
		},
		Vertex:   quadVertexShader,
		Fragment: convolutionFragmentShader,
	}
}

// BloomShader adds the blurred glow to the base image
func BloomShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderBloom,
		Uniforms: gfx.Uniforms{
			"tDiffuse": {Value: nil},
			"tBloom":   {Value: nil},
			"strength": {Value: float32(1)},
		},
		Vertex:   quadVertexShader,
		Fragment: bloomFragmentShader,
	}
}

func FilmShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderFilm,
		Uniforms: gfx.Uniforms{
			"tDiffuse":   {Value: nil},
			"time":       {Value: float32(0)},
			"nIntensity": {Value: float32(0.5)},
			"sIntensity": {Value: float32(0.05)},
			"sCount":     {Value: float32(4096)},
			"grayscale":  {Value: false},
		},
		Vertex:   quadVertexShader,
		Fragment: filmFragmentShader,
	}
}

func DotScreenShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderDotScreen,
		Uniforms: gfx.Uniforms{
			"tDiffuse": {Value: nil},
			"tSize":    {Value: mgl32.Vec2{256, 256}},
			"center":   {Value: mgl32.Vec2{0.5, 0.5}},
			"angle":    {Value: float32(1.57)},
			"scale":    {Value: float32(1)},
		},
		Vertex:   quadVertexShader,
		Fragment: dotScreenFragmentShader,
	}
}

func HalftoneShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderHalftone,
		Uniforms: gfx.Uniforms{
			"tDiffuse":     {Value: nil},
			"shape":        {Value: int32(1)},
			"radius":       {Value: float32(4)},
			"rotateR":      {Value: float32(0.2617994)},
			"rotateG":      {Value: float32(0.5235988)},
			"rotateB":      {Value: float32(0.7853982)},
			"scatter":      {Value: float32(0)},
			"width":        {Value: float32(1)},
			"height":       {Value: float32(1)},
			"blending":     {Value: float32(1)},
			"blendingMode": {Value: int32(1)},
			"greyscale":    {Value: false},
			"disable":      {Value: false},
		},
		Vertex:   quadVertexShader,
		Fragment: halftoneFragmentShader,
	}
}

func GlitchShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderGlitch,
		Uniforms: gfx.Uniforms{
			"tDiffuse":     {Value: nil},
			"tDisp":        {Value: nil},
			"byp":          {Value: int32(0)},
			"amount":       {Value: float32(0.08)},
			"angle":        {Value: float32(0.02)},
			"seed":         {Value: float32(0.02)},
			"seed_x":       {Value: float32(0.02)},
			"seed_y":       {Value: float32(0.02)},
			"distortion_x": {Value: float32(0.5)},
			"distortion_y": {Value: float32(0.6)},
			"col_s":        {Value: float32(0.05)},
		},
		Vertex:   quadVertexShader,
		Fragment: glitchFragmentShader,
	}
}

func BokehShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderBokeh,
		Uniforms: gfx.Uniforms{
			"tColor":   {Value: nil},
			"tDepth":   {Value: nil},
			"focus":    {Value: float32(1)},
			"aspect":   {Value: float32(1)},
			"aperture": {Value: float32(0.025)},
			"maxblur":  {Value: float32(0.01)},
			"nearClip": {Value: float32(1)},
			"farClip":  {Value: float32(1000)},
		},
		Vertex:   quadVertexShader,
		Fragment: bokehFragmentShader,
	}
}

// DepthShader renders scene geometry as RGBA-packed depth
func DepthShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name:     ShaderDepth,
		Uniforms: sceneUniforms(),
		Vertex:   sceneVertexShader,
		Fragment: depthFragmentShader,
	}
}

// NormalShader renders scene geometry as encoded view-space normals
func NormalShader() gfx.ShaderSource {
	u := sceneUniforms()
	u["opacity"] = &gfx.Uniform{Value: float32(1)}
	return gfx.ShaderSource{
		Name:     ShaderNormal,
		Uniforms: u,
		Vertex:   sceneVertexShader,
		Fragment: normalFragmentShader,
	}
}

func SSAOShader(kernelSize int) gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderSSAO,
		Defines: map[string]string{
			"KERNEL_SIZE": formatInt(kernelSize),
		},
		Uniforms: gfx.Uniforms{
			"tNormal":                       {Value: nil},
			"tDepth":                        {Value: nil},
			"tNoise":                        {Value: nil},
			"kernel":                        {Value: []mgl32.Vec3{}},
			"cameraNear":                    {Value: float32(0.1)},
			"cameraFar":                     {Value: float32(100)},
			"resolution":                    {Value: mgl32.Vec2{}},
			"cameraProjectionMatrix":        {Value: mgl32.Ident4()},
			"cameraInverseProjectionMatrix": {Value: mgl32.Ident4()},
			"kernelRadius":                  {Value: float32(8)},
			"minDistance":                   {Value: float32(0.005)},
			"maxDistance":                   {Value: float32(0.05)},
		},
		Vertex:   quadVertexShader,
		Fragment: ssaoFragmentShader,
	}
}

func SSAODepthShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderSSAODepth,
		Uniforms: gfx.Uniforms{
			"tDepth":     {Value: nil},
			"cameraNear": {Value: float32(0.1)},
			"cameraFar":  {Value: float32(100)},
		},
		Vertex:   quadVertexShader,
		Fragment: ssaoDepthFragmentShader,
	}
}

func SSAOBlurShader() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name: ShaderSSAOBlur,
		Uniforms: gfx.Uniforms{
			"tDiffuse":   {Value: nil},
			"resolution": {Value: mgl32.Vec2{}},
		},
		Vertex:   quadVertexShader,
		Fragment: ssaoBlurFragmentShader,
	}
}

// BasicShader is a flat-coloured, single-light scene material
func BasicShader() gfx.ShaderSource {
	u := sceneUniforms()
	u["color"] = &gfx.Uniform{Value: mgl32.Vec3{1, 1, 1}}
	u["lightDirection"] = &gfx.Uniform{Value: mgl32.Vec3{0.4, 1, 0.3}}
	u["ambient"] = &gfx.Uniform{Value: float32(0.25)}
	return gfx.ShaderSource{
		Name:     ShaderBasic,
		Uniforms: u,
		Vertex:   sceneVertexShader,
		Fragment: basicFragmentShader,
	}
}

// sceneUniforms are filled per object by the backend's Draw
func sceneUniforms() gfx.Uniforms {
	return gfx.Uniforms{
		"modelMatrix":      {Value: mgl32.Ident4()},
		"viewMatrix":       {Value: mgl32.Ident4()},
		"projectionMatrix": {Value: mgl32.Ident4()},
		"normalMatrix":     {Value: mgl32.Ident3()},
	}
}
