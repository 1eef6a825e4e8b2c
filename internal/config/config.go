// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config loads CLI-level mintyml.Options from a YAML file, so a
// directory of documents can share one set of conversion defaults without
// repeating flags.
package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/youngspe/mintyml-go/mintyml"
)

// File is the on-disk shape of a `--config FILE` document. Pointer fields
// distinguish "not set" (use mintyml's own default) from an explicit zero
// value, the same distinction mintyml.Options.Indent already makes.
type File struct {
	XML          *bool `yaml:"xml"`
	Indent       *int  `yaml:"indent"`
	CompletePage *bool `yaml:"completePage"`
	// A null value under specialTags means "unwrap": drop that formatting
	// wrapper and emit its content in place.
	SpecialTags      map[string]*string `yaml:"specialTags"`
	Metadata         *bool              `yaml:"metadata"`
	MetadataElements *bool              `yaml:"metadataElements"`
	FailFast         *bool              `yaml:"failFast"`
}

// schema describes File's shape for validation before unmarshal: a literal
// tree of *jsonschema.Schema, not a struct tag reflection pass.
var schema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"xml":          {Type: "boolean"},
		"indent":       {Type: "integer", Minimum: float64Ptr(0)},
		"completePage": {Type: "boolean"},
		"specialTags": {
			Type: "object",
			AdditionalProperties: &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "null"},
			}},
		},
		"metadata":         {Type: "boolean"},
		"metadataElements": {Type: "boolean"},
		"failFast":         {Type: "boolean"},
	},
	AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
}

func float64Ptr(v float64) *float64 { return &v }

// resolvedSchema is built once; Resolve does the $ref/anchor bookkeeping
// jsonschema-go needs before Validate can run, and that bookkeeping doesn't
// depend on the instance being validated.
var resolvedSchema = func() *jsonschema.Resolved {
	r, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("config: invalid built-in schema: %v", err))
	}
	return r
}()

// Load reads and validates a config file's bytes, returning the decoded
// File. A schema violation is reported before the YAML unmarshal step ever
// runs, so a malformed config fails with a precise pointer into the
// document rather than a generic "cannot unmarshal" error.
func Load(data []byte) (*File, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if generic == nil {
		return &File{}, nil
	}
	if err := resolvedSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &f, nil
}

// Apply overlays a loaded File onto base, returning the merged Options.
// Fields absent from the file (nil pointers, nil map) leave base untouched,
// so `--config` composes with the CLI's own flags rather than replacing
// them outright: flags parsed after `--config` still win.
func (f *File) Apply(base mintyml.Options) mintyml.Options {
	out := base
	if f.XML != nil {
		out.XML = *f.XML
	}
	if f.Indent != nil {
		v := *f.Indent
		out.Indent = &v
	}
	if f.CompletePage != nil {
		out.CompletePage = *f.CompletePage
	}
	if f.SpecialTags != nil {
		merged := make(map[string]*string, len(f.SpecialTags))
		for k, v := range out.SpecialTags {
			merged[k] = v
		}
		for k, v := range f.SpecialTags {
			merged[k] = v
		}
		out.SpecialTags = merged
	}
	if f.Metadata != nil {
		out.Metadata = *f.Metadata
	}
	if f.MetadataElements != nil {
		out.MetadataElements = *f.MetadataElements
	}
	if f.FailFast != nil {
		out.FailFast = *f.FailFast
	}
	return out
}
