// internal/verify/suite.go
package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Suite is a verification test set loaded from a JSON file, an alternative to
// pulling reference entries straight from the dictionary store.
type Suite struct {
	SystemPrompt string           `json:"system_prompt,omitempty"`
	Entries      []ReferenceEntry `json:"entries"`
}

// suiteSchema validates suite files before a run starts, so a malformed file
// fails up front instead of midway through a rate-limited batch.
const suiteSchema = `{
  "type": "object",
  "required": ["entries"],
  "properties": {
    "system_prompt": {"type": "string"},
    "entries": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["headword", "meaning"],
        "properties": {
          "headword": {"type": "string", "minLength": 1},
          "meaning": {"type": "string"},
          "native_script": {"type": "string"}
        }
      }
    }
  }
}`

// LoadSuite reads and validates a suite file.
func LoadSuite(path string) (Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("error reading suite file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(suiteSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return Suite{}, fmt.Errorf("error validating suite file: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Suite{}, fmt.Errorf("suite file failed validation: %s", strings.Join(details, "; "))
	}

	var suite Suite
	if err := json.Unmarshal(raw, &suite); err != nil {
		return Suite{}, fmt.Errorf("error parsing suite file: %w", err)
	}
	return suite, nil
}
