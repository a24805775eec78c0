// SPDX-License-Identifier: Apache-2.0
package config

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestGenerateJSONSchema(t *testing.T) {
	schema, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if result["$schema"] != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("$schema = %v, want Draft 2020-12", result["$schema"])
	}
	if result["title"] != "dist Configuration" {
		t.Errorf("title = %v, want dist Configuration", result["title"])
	}

	properties, ok := result["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties field missing or not an object")
	}

	for _, key := range []string{"use-tui", "log-level", "index", "distribution", "list", "http", "verify"} {
		if _, exists := properties[key]; !exists {
			t.Errorf("Expected property '%s' not found in schema", key)
		}
	}
}

func TestGenerateJSONSchema_NestedProperties(t *testing.T) {
	schema, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	properties := result["properties"].(map[string]interface{})
	list, ok := properties["list"].(map[string]interface{})
	if !ok {
		t.Fatal("list should be an object")
	}
	if list["type"] != "object" {
		t.Errorf("list type = %v, want object", list["type"])
	}

	listProps := list["properties"].(map[string]interface{})
	marking, ok := listProps["marking"].(map[string]interface{})
	if !ok {
		t.Fatal("list.marking missing from schema")
	}
	enum, ok := marking["enum"].([]interface{})
	if !ok || len(enum) != 2 {
		t.Errorf("list.marking enum = %v, want 2 values", marking["enum"])
	}

	http := properties["http"].(map[string]interface{})
	timeout := http["properties"].(map[string]interface{})["timeout"].(map[string]interface{})
	if timeout["type"] != "string" || timeout["pattern"] == nil {
		t.Errorf("http.timeout should be a string with a duration pattern, got %v", timeout)
	}
}

func TestGenerateJSONSchemaForScope_RepoOmitsForbidden(t *testing.T) {
	scope := ScopeRepo
	schema, err := GenerateJSONSchemaForScope(&scope)
	if err != nil {
		t.Fatalf("GenerateJSONSchemaForScope failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if result["title"] != "dist Repo Configuration" {
		t.Errorf("title = %v, want dist Repo Configuration", result["title"])
	}

	index := result["properties"].(map[string]interface{})["index"].(map[string]interface{})
	indexProps := index["properties"].(map[string]interface{})
	if _, exists := indexProps["token"]; exists {
		t.Error("repo schema should not contain index.token")
	}
	if _, exists := indexProps["url"]; !exists {
		t.Error("repo schema should contain index.url")
	}
}

func TestGenerateJSONSchemaForScope_UserIncludesToken(t *testing.T) {
	scope := ScopeUser
	schema, err := GenerateJSONSchemaForScope(&scope)
	if err != nil {
		t.Fatalf("GenerateJSONSchemaForScope failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	index := result["properties"].(map[string]interface{})["index"].(map[string]interface{})
	if _, exists := index["properties"].(map[string]interface{})["token"]; !exists {
		t.Error("user schema should contain index.token")
	}
}

func TestGenerateJSONSchema_ValidatesDocuments(t *testing.T) {
	raw, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	compiled, err := jsonschema.CompileString("config.schema.json", string(raw))
	if err != nil {
		t.Fatalf("generated schema does not compile: %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty", `{}`, false},
		{"valid", `{"use-tui": false, "list": {"marking": "identifier"}, "http": {"timeout": "1m30s"}}`, false},
		{"bad enum", `{"list": {"marking": "fancy"}}`, true},
		{"bad duration", `{"http": {"timeout": "soon"}}`, true},
		{"unknown key", `{"runtime": "1.2.0"}`, true},
		{"wrong type", `{"use-tui": "yes"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc interface{}
			if err := json.Unmarshal([]byte(tt.doc), &doc); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			err := compiled.Validate(doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
