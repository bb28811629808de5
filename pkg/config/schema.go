package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/picogrid/reionsim/pkg/params"
)

// inputsSchema mirrors InputsFile with typed sections, for schema output.
type inputsSchema struct {
	Cosmo  params.CosmoInput   `json:"cosmo,omitempty" jsonschema:"description=Cosmological parameters"`
	User   params.UserInput    `json:"user,omitempty" jsonschema:"description=Grid and model selection"`
	Astro  params.AstroInput   `json:"astro,omitempty" jsonschema:"description=Astrophysical source parameters (log10 where noted)"`
	Flags  params.FlagInput    `json:"flags,omitempty" jsonschema:"description=Feature flags"`
	Global params.GlobalParams `json:"global,omitempty" jsonschema:"description=Rarely varied global parameters"`
}

// Schema returns the JSON schema of an inputs file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "json",
	}

	schema := r.Reflect(&inputsSchema{})
	schema.Title = "reionsim inputs"
	schema.Description = "Input parameters for a reionization simulation run."
	return schema
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
