package toolschema

import (
	"encoding/json"
	"testing"
)

type sampleRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Rule        string `json:"rule,omitempty"`
}

func TestOfProducesValidJSON(t *testing.T) {
	raw := Of[sampleRequest]()
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if doc["type"] != "object" {
		t.Errorf(`schema "type" = %v, want "object"`, doc["type"])
	}
	props, ok := doc["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("schema has no properties object")
	}
	if _, ok := props["grammarText"]; !ok {
		t.Error("schema is missing grammarText property")
	}
	if _, ok := props["rule"]; !ok {
		t.Error("schema is missing rule property")
	}
}

func TestOfMarksRequiredFields(t *testing.T) {
	raw := Of[sampleRequest]()
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	required, ok := doc["required"].([]interface{})
	if !ok {
		t.Fatal("schema has no required list")
	}
	found := false
	for _, r := range required {
		if r == "grammarText" {
			found = true
		}
	}
	if !found {
		t.Errorf("required = %v, want it to include grammarText", required)
	}
}

func TestOfDoesNotAllowAdditionalProperties(t *testing.T) {
	raw := Of[sampleRequest]()
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if v, ok := doc["additionalProperties"]; !ok || v != false {
		t.Errorf("additionalProperties = %v, want false", v)
	}
}
