package main

import (
	"reflect"
	"testing"
)

func TestFlattenNestedFields(t *testing.T) {
	got := flatten("", map[string]any{
		"Locale": "th",
		"Access": map[string]any{"Secret": "********"},
		"Storage": map[string]any{
			"Bucket":    "project-files",
			"StagedTTL": nil,
		},
		"ConstructionTypes": []any{"New build", "Renovation"},
		"Retries":           float64(3),
	})
	want := [][2]string{
		{"Access.Secret", "********"},
		{"ConstructionTypes", `["New build","Renovation"]`},
		{"Locale", "th"},
		{"Retries", "3"},
		{"Storage.Bucket", "project-files"},
		{"Storage.StagedTTL", "-"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("flatten:\n got %v\nwant %v", got, want)
	}
}
