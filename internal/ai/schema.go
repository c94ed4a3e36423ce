package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const styleAnalysisSchema = `{
  "type": "object",
  "required": ["selectedIds"],
  "properties": {
    "faceShape": {"type": "string"},
    "gender": {"type": "string"},
    "clothingSuggestion": {"type": "string"},
    "outfitSuggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["style", "description"],
        "properties": {
          "style": {"type": "string"},
          "description": {"type": "string"},
          "colors": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "selectedIds": {"type": "array", "items": {"type": "integer"}},
    "reasoning": {"type": "array", "items": {"type": "string"}}
  }
}`

const assetDescriptionSchema = `{
  "type": "object",
  "required": ["name", "face_shape_match"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "tags": {"type": "array", "items": {"type": "string"}},
    "face_shape_match": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "description": {"type": "string"}
  }
}`

var (
	styleSchema = mustSchema(styleAnalysisSchema)
	assetSchema = mustSchema(assetDescriptionSchema)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("invalid embedded schema: " + err.Error())
	}
	return schema
}

// SchemaError lists the fields where a model response broke the expected contract.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "response does not match schema: " + strings.Join(e.Fields, "; ")
}

// CleanJSONBlock strips markdown code fences models like to wrap JSON in.
func CleanJSONBlock(content string) string {
	s := strings.TrimSpace(content)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractJSON attempts to extract a JSON object from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	return content[start:]
}

func decodeValidated(schema *gojsonschema.Schema, content string, out any) error {
	doc := extractJSON(CleanJSONBlock(content))

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			fields = append(fields, field+": "+desc.Description())
		}
		return &SchemaError{Fields: fields}
	}

	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseStyleAnalysis decodes and validates an oracle response.
func ParseStyleAnalysis(content string) (*StyleAnalysis, error) {
	var analysis StyleAnalysis
	if err := decodeValidated(styleSchema, content, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ParseAssetDescription decodes and validates an asset description response.
func ParseAssetDescription(content string) (*AssetDescription, error) {
	var desc AssetDescription
	if err := decodeValidated(assetSchema, content, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}
