// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package builtin

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imageorient"
	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// MaxImageSize is the largest image VisionTool will base64-encode for a
// provider request; most multimodal providers cap inline images well
// under this.
const MaxImageSize = 20 * 1024 * 1024

// maxImageDimension bounds the longest edge VisionTool will send inline;
// provider vision encoders downsample past this anyway, so shrinking
// client-side saves the request payload and the round trip.
const maxImageDimension = 1568

var supportedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true}

// svgRasterDimension is the square canvas SVGs are rasterized onto before
// being sent to a provider, since multimodal models take raster images,
// not vector markup.
const svgRasterDimension = 1024

// VisionTool stages an image for a multimodal LLM call. It does not call
// a vision model itself: it validates and base64-encodes the image, and
// the orchestrator attaches the result as an ImageContent block on the
// next LLM turn.
type VisionTool struct {
	WorkDir string
}

func NewVisionTool(workDir string) *VisionTool { return &VisionTool{WorkDir: workDir} }

func (t *VisionTool) Name() string        { return "analyze_image" }
func (t *VisionTool) Description() string { return "Loads an image (JPEG/PNG/GIF/WebP, max 20MB) for a multimodal model to analyze." }
func (t *VisionTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *VisionTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"image_path": sandbox.NewStringSchema("Path to the image file."),
		"question":   sandbox.NewStringSchema("Optional question or instruction about the image."),
	}, "image_path")
}

func (t *VisionTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["image_path"].(string)
	return &sandbox.Operation{OperationType: "vision_load", Target: path, Risk: sandbox.RiskLow, Summary: "load image " + path}, nil
}

func (t *VisionTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	path, ok := input["image_path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "image_path is required"}
	}
	question, _ := input["question"].(string)

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	ext := strings.ToLower(extOf(clean))
	if !supportedImageExt[ext] {
		return nil, &sandbox.Error{Code: "UNSUPPORTED_FORMAT", Message: fmt.Sprintf("unsupported image format: %s", ext)}
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: err.Error()}
	}
	if info.Size() > MaxImageSize {
		return nil, &sandbox.Error{Code: "FILE_TOO_LARGE", Message: fmt.Sprintf("image too large: %d bytes", info.Size())}
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "READ_FAILED", Message: err.Error()}
	}

	originalSize := info.Size()
	resized := false
	rasterized := false
	if ext == ".svg" {
		out, err := rasterizeSVG(data)
		if err != nil {
			return nil, &sandbox.Error{Code: "RASTER_FAILED", Message: err.Error()}
		}
		data = out
		ext = ".png"
		rasterized = true
	} else if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		if out, ok := normalizeImage(data, ext); ok {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				resized = cfg.Width > maxImageDimension || cfg.Height > maxImageDimension
			}
			data = out
		}
	}

	return &sandbox.Result{
		Output: base64.StdEncoding.EncodeToString(data),
		Metadata: map[string]interface{}{
			"path":          clean,
			"mime_type":     mimeForExt(ext),
			"size_bytes":    originalSize,
			"encoded_bytes": len(data),
			"resized":       resized,
			"rasterized":    rasterized,
			"question":      question,
		},
	}, nil
}

// rasterizeSVG renders SVG markup onto a fixed-size square canvas and
// PNG-encodes the result, since vector markup isn't a format any
// multimodal provider accepts inline.
func rasterizeSVG(data []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	icon.SetTarget(0, 0, svgRasterDimension, svgRasterDimension)

	img := image.NewRGBA(image.Rect(0, 0, svgRasterDimension, svgRasterDimension))
	scanner := rasterx.NewScannerGV(svgRasterDimension, svgRasterDimension, img, img.Bounds())
	raster := rasterx.NewDasher(svgRasterDimension, svgRasterDimension, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding rasterized svg: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeImage EXIF-corrects orientation and downsamples to
// maxImageDimension on the long edge. It returns ok=false (caller keeps
// the original bytes) on any decode/encode failure rather than blocking
// the whole tool call on an image it can't safely transform.
func normalizeImage(data []byte, ext string) ([]byte, bool) {
	img, _, err := imageorient.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}

	b := img.Bounds()
	if b.Dx() > maxImageDimension || b.Dy() > maxImageDimension {
		if b.Dx() >= b.Dy() {
			img = resize.Resize(maxImageDimension, 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, maxImageDimension, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	switch ext {
	case ".png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func extOf(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}

func mimeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
