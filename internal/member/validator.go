package member

import (
	"bytes"

	"github.com/xeipuuv/gojsonschema"
)

func validateInputJSON(raw []byte) error {
	loader := gojsonschema.NewBytesLoader(raw)
	schemaLoader := gojsonschema.NewStringLoader(inputSchema)
	result, err := gojsonschema.Validate(schemaLoader, loader)
	if err != nil {
		return &MalformedInputError{Reason: "json parse", Err: err}
	}
	if !result.Valid() {
		return &MalformedInputError{Reason: collect(result.Errors())}
	}
	return nil
}

func collect(errs []gojsonschema.ResultError) string {
	var buf bytes.Buffer
	for i, e := range errs {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteString(e.String())
	}
	return buf.String()
}
