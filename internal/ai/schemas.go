package ai

import (
	"fmt"
	"strings"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

// replySchemas are the JSON Schemas replies must satisfy, per operation.
// Analysis replies have no schema: the transformer accepts any shape.
var replySchemas = map[string]string{
	config.OperationQuestions: `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "purpose": {"type": "string"}
        }
      }
    }
  }
}`,

	config.OperationCompare: `{
  "type": "object",
  "required": ["rankings"],
  "properties": {
    "rankings": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["candidateId", "rank"],
        "properties": {
          "candidateId": {"type": "string"},
          "rank": {"type": "integer", "minimum": 1},
          "score": {"type": "integer", "minimum": 0, "maximum": 100},
          "summary": {"type": "string"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "recommendation": {"type": "string"}
  }
}`,

	config.OperationATS: `{
  "type": "object",
  "required": ["score", "keywords"],
  "properties": {
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "keywords": {
      "type": "object",
      "properties": {
        "present": {"type": "array", "items": {"type": "string"}},
        "missing": {"type": "array", "items": {"type": "string"}}
      }
    },
    "formattingIssues": {"type": "array", "items": {"type": "string"}},
    "suggestions": {"type": "array", "items": {"type": "string"}}
  }
}`,
}

// validateReply checks a cleaned reply against the operation's schema
func validateReply(operation, cleaned string) error {
	schema, ok := replySchemas[operation]
	if !ok {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return errors.NewAIResponseError("Failed to validate AI response for "+operation, err)
	}
	if result.Valid() {
		return nil
	}

	fields := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return errors.NewAIResponseError(
		fmt.Sprintf("AI response for %s does not match the expected shape", operation), nil).
		WithContext("violations", strings.Join(fields, "; "))
}
