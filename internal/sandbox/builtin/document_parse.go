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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

const (
	// MaxDocumentSize caps how large a file DocumentParseTool will open.
	MaxDocumentSize = 100 * 1024 * 1024
	// MaxCSVRows caps how many data rows a single call returns.
	MaxCSVRows = 10000
	// MaxPDFPages caps how many pages get text-extracted in one call.
	MaxPDFPages = 100
	// MaxExcelRows caps how many rows per sheet a single call returns.
	MaxExcelRows = 10000
)

// DocumentParseTool extracts structured content from CSV, PDF, and Excel
// files, so an agent can read a spreadsheet or report without a human
// pasting its contents into chat.
type DocumentParseTool struct {
	WorkDir string
}

func NewDocumentParseTool(workDir string) *DocumentParseTool { return &DocumentParseTool{WorkDir: workDir} }

func (t *DocumentParseTool) Name() string { return "parse_document" }
func (t *DocumentParseTool) Description() string {
	return "Extracts structured content from CSV, PDF, or Excel (.xlsx) files: CSV rows keyed by header with string values, PDF page text, Excel sheet rows with numeric cells parsed as numbers."
}
func (t *DocumentParseTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *DocumentParseTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":      sandbox.NewStringSchema("File path to parse, relative to the working directory."),
		"format":    sandbox.NewStringSchema("auto (default, detected from extension), csv, pdf, or xlsx.").WithEnum("auto", "csv", "pdf", "xlsx").WithDefault("auto"),
		"max_rows":  sandbox.NewNumberSchema("Maximum rows to return for CSV/Excel (default 10000)."),
		"max_pages": sandbox.NewNumberSchema("Maximum PDF pages to extract text from (default 100)."),
	}, "path")
}

func (t *DocumentParseTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	return &sandbox.Operation{OperationType: "document_parse", Target: path, Risk: sandbox.RiskLow, Summary: "parse " + path}, nil
}

func (t *DocumentParseTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	path, ok := input["path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "path is required"}
	}

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	info, err := os.Stat(clean)
	if os.IsNotExist(err) {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &sandbox.Error{Code: "STAT_FAILED", Message: err.Error()}
	}
	if info.Size() > MaxDocumentSize {
		return nil, &sandbox.Error{Code: "FILE_TOO_LARGE", Message: fmt.Sprintf("file too large: %d bytes", info.Size())}
	}

	format, _ := input["format"].(string)
	if format == "" || format == "auto" {
		format = detectDocumentFormat(clean)
		if format == "" {
			return nil, &sandbox.Error{Code: "UNSUPPORTED_FORMAT", Message: "unable to detect format; pass format explicitly"}
		}
	}

	maxRows := MaxCSVRows
	if m, ok := input["max_rows"].(float64); ok && m > 0 {
		maxRows = int(m)
	}
	maxPages := MaxPDFPages
	if m, ok := input["max_pages"].(float64); ok && m > 0 {
		maxPages = int(m)
	}

	var data map[string]interface{}
	switch format {
	case "csv":
		data, err = parseCSV(clean, maxRows)
	case "pdf":
		data, err = parsePDF(clean, maxPages)
	case "xlsx":
		data, err = parseExcel(clean, maxRows)
	default:
		return nil, &sandbox.Error{Code: "UNSUPPORTED_FORMAT", Message: "unsupported format: " + format}
	}
	if err != nil {
		return nil, &sandbox.Error{Code: "PARSE_FAILED", Message: err.Error()}
	}

	data["format"] = format
	data["path"] = clean
	return &sandbox.Result{Metadata: data}, nil
}

func detectDocumentFormat(path string) string {
	switch strings.ToLower(pathExt(path)) {
	case ".csv":
		return "csv"
	case ".pdf":
		return "pdf"
	case ".xlsx":
		return "xlsx"
	default:
		return ""
	}
}

func pathExt(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}

func parseCSV(path string, maxRows int) (map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	var headers []string
	var rows [][]string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if i == 0 {
			headers = record
			continue
		}
		rows = append(rows, record)
		if len(rows) >= maxRows {
			break
		}
	}

	structured := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]interface{}, len(headers))
		for i, v := range row {
			if i < len(headers) {
				m[headers[i]] = v
			}
		}
		structured = append(structured, m)
	}

	return map[string]interface{}{
		"headers":      headers,
		"rows":         structured,
		"row_count":    len(rows),
		"column_count": len(headers),
	}, nil
}

func parsePDF(path string, maxPages int) (map[string]interface{}, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	limit := total
	if limit > maxPages {
		limit = maxPages
	}

	var pages []map[string]interface{}
	totalChars := 0
	for pageNum := 1; pageNum <= limit; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, map[string]interface{}{"page_number": pageNum, "text": text, "char_count": len(text)})
		totalChars += len(text)
	}

	return map[string]interface{}{
		"page_count":  total,
		"pages":       pages,
		"total_chars": totalChars,
	}, nil
}

func parseExcel(path string, maxRows int) (map[string]interface{}, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening excel file: %w", err)
	}
	defer file.Close()

	var sheets []map[string]interface{}
	for _, sheetName := range file.GetSheetList() {
		rows, err := file.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}

		headers := rows[0]
		var structured []map[string]interface{}
		for i := 1; i < len(rows) && len(structured) < maxRows; i++ {
			row := rows[i]
			m := make(map[string]interface{}, len(headers))
			for j, cell := range row {
				if j >= len(headers) {
					continue
				}
				if num, err := strconv.ParseFloat(cell, 64); err == nil {
					m[headers[j]] = num
				} else {
					m[headers[j]] = cell
				}
			}
			structured = append(structured, m)
		}

		sheets = append(sheets, map[string]interface{}{
			"name":      sheetName,
			"headers":   headers,
			"rows":      structured,
			"row_count": len(structured),
		})
	}

	return map[string]interface{}{"sheet_count": len(sheets), "sheets": sheets}, nil
}
