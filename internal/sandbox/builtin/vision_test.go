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
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVisionTool_SmallImagePassesThroughUnresized(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "small.png", 20, 20)
	tool := NewVisionTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"image_path": "small.png"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata["resized"] != false {
		t.Errorf("expected a small image to pass through unresized, got metadata: %v", result.Metadata)
	}
	if _, err := base64.StdEncoding.DecodeString(result.Output); err != nil {
		t.Errorf("output is not valid base64: %v", err)
	}
}

func TestVisionTool_LargeImageIsDownsampled(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "large.png", maxImageDimension+200, 100)
	tool := NewVisionTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"image_path": "large.png"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata["resized"] != true {
		t.Errorf("expected a large image to be downsampled, got metadata: %v", result.Metadata)
	}

	raw, err := base64.StdEncoding.DecodeString(result.Output)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("resized output is not a valid PNG: %v", err)
	}
	if cfg.Width > maxImageDimension {
		t.Errorf("expected width <= %d, got %d", maxImageDimension, cfg.Width)
	}
}

func TestVisionTool_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("not an image"), 0o600)
	tool := NewVisionTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"image_path": "doc.txt"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
