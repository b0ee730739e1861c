package ai

import (
	"encoding/json"
	"strings"

	"resumescreen/internal/errors"

	"github.com/tidwall/gjson"
)

// CleanJSON extracts the JSON object from a model reply. It strips markdown
// code fences, trims, and slices from the first '{' to the last '}' so that
// explanatory prose around the object is tolerated.
func CleanJSON(reply string) (string, error) {
	text := strings.TrimSpace(reply)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.NewAIResponseError("AI reply contains no JSON object", nil).
			WithContext("reply_length", len(reply))
	}
	text = text[start : end+1]

	if !gjson.Valid(text) {
		return "", errors.NewAIResponseError("AI reply is not valid JSON", nil).
			WithContext("reply_length", len(reply))
	}
	return text, nil
}

// decodeReply cleans a reply and unmarshals it into out
func decodeReply(reply string, out any) error {
	cleaned, err := CleanJSON(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return errors.NewAIResponseError("Failed to parse AI response", err)
	}
	return nil
}
