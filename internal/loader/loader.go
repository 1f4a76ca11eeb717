// Package loader reads API descriptions into model.Document. RAML-shaped
// YAML, Swagger 2.0 and OpenAPI 3.x documents are supported.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/apiconsole/internal/model"
)

type Format string

const (
	FormatRAML     Format = "raml"
	FormatSwagger2 Format = "swagger2"
	FormatOpenAPI3 Format = "openapi3"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

type Result struct {
	Document *model.Document
	Format   Format
	// Version is the version of the description format, e.g. 0.8 or 3.1.0.
	Version  string
	Warnings []string
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	return Load(data, filepath.Dir(absPath))
}

// Load reads data. basePath resolves file references of OpenAPI documents
// and may be empty.
func Load(data []byte, basePath string) (*Result, error) {
	format, version, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	var config *datamodel.DocumentConfiguration
	if basePath != "" {
		config = &datamodel.DocumentConfiguration{
			BasePath:            basePath,
			AllowFileReferences: true,
		}
	}

	switch format {
	case FormatRAML:
		return loadRAML(data, version)
	case FormatSwagger2:
		converted, err := convertSwagger(data)
		if err != nil {
			return nil, err
		}
		result, err := loadOpenAPI(converted, config)
		if err != nil {
			return nil, err
		}
		result.Format = FormatSwagger2
		result.Version = version
		return result, nil
	default:
		return loadOpenAPI(data, config)
	}
}

// DetectFormat inspects the document header and top-level keys.
func DetectFormat(data []byte) (Format, string, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if header, ok := bytes.CutPrefix(trimmed, []byte("#%RAML")); ok {
		line, _, _ := bytes.Cut(header, []byte("\n"))
		return FormatRAML, strings.TrimSpace(string(line)), nil
	}

	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return "", "", fmt.Errorf("parsing document: %w", err)
	}

	if v, ok := root["openapi"].(string); ok && strings.HasPrefix(v, "3.") {
		return FormatOpenAPI3, v, nil
	}
	if v, ok := root["swagger"].(string); ok && strings.HasPrefix(v, "2.") {
		return FormatSwagger2, v, nil
	}
	if _, ok := root["openapi"]; ok {
		return "", "", fmt.Errorf("%w: openapi %v (only 3.x supported)", ErrUnsupportedFormat, root["openapi"])
	}

	for key := range root {
		if strings.HasPrefix(key, "/") {
			return FormatRAML, "", nil
		}
	}
	if _, ok := root["baseUri"]; ok {
		return FormatRAML, "", nil
	}

	return "", "", ErrUnsupportedFormat
}

func loadOpenAPI(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	var doc libopenapi.Document
	var err error

	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("%w: OpenAPI %s (only 3.x supported)", ErrUnsupportedFormat, version)
	}

	v3Model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	t := &transformer{}
	document := t.transform(&v3Model.Model)

	return &Result{
		Document: document,
		Format:   FormatOpenAPI3,
		Version:  version,
		Warnings: t.warnings,
	}, nil
}
