package vision

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error
)

// responseSchema compiles the embedded CUE schema once. The schema is
// part of the binary; a compile failure is a build defect, surfaced as
// an error to every caller rather than a panic. The context is kept
// alongside the value because data must be encoded in the same context
// it is unified in.
func responseSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile response schema: %w", err)
			return
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Response"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Response: %w", err)
		}
	})
	return schemaCtx, schemaVal, schemaErr
}

// ValidateDescription checks a decoded description mapping against the
// response schema. Unknown extra fields are allowed (the normalizer
// drops them); known fields with the wrong shape are rejected with a
// positioned message.
func ValidateDescription(desc map[string]any) error {
	ctx, schema, err := responseSchema()
	if err != nil {
		return err
	}

	data := ctx.Encode(desc)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode description: %w", err)
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("description does not match response schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}
