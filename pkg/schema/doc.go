// Package schema renders tool parameter declarations into JSON Schema and
// validates call arguments against them.
//
// A tool declares its parameters as a list of domain.ParamSpec. JSONSchema
// turns that list into an object schema (a parameter is required when it has
// no default), which is what language models receive and what Validate checks
// arguments against:
//
//	spec := domain.ToolSpec{
//	    Name: "simulate_ber",
//	    Params: []domain.ParamSpec{
//	        {Name: "num_bits", Type: domain.TypeInteger, Default: 100000},
//	    },
//	}
//
//	if err := schema.Validate(spec, args); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each field failure
//	    }
//	}
//
//	args = schema.ApplyDefaults(spec, args)
//
// Validation is delegated to gojsonschema so that the server, the bridge and
// the model all read the same document.
package schema
