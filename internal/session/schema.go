package session

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// recordSchemaJSON is the structural contract for a persisted session
// record. Records are validated against it before unmarshalling so a
// corrupt file is reported as corruption, not as a zero-valued session.
const recordSchemaJSON = `{
  "type": "object",
  "required": ["session_id", "prompt", "workflow_stack", "created_at", "last_accessed"],
  "properties": {
    "session_id": {"type": "string", "pattern": "^[a-z0-9]{8,20}$"},
    "prompt": {"type": "string"},
    "created_at": {"type": "string"},
    "last_accessed": {"type": "string"},
    "workflow_stack": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["workflow_name", "steps", "current_step"],
        "properties": {
          "workflow_name": {"type": "string", "minLength": 1},
          "current_step": {"type": "integer", "minimum": 0},
          "steps": {
            "type": "array",
            "items": {
              "oneOf": [
                {"type": "string"},
                {"type": "object", "required": ["text"]}
              ]
            }
          }
        }
      }
    }
  }
}`

var recordSchema = gojsonschema.NewStringLoader(recordSchemaJSON)

// validateRecord checks raw record bytes against the schema.
func validateRecord(data []byte) error {
	result, err := gojsonschema.Validate(recordSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("record is not valid json: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("record failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}
