package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/distgridgo/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface. It binds a target's evaluated field values to the tagged Go
// structs that packaging capabilities declare.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeFields populates fieldSetStruct from the given field values using
// reflection. Struct fields opt in with a `dgo:"field_name"` tag; a
// ",optional" suffix keeps the zero value when the field is absent instead
// of failing.
func (c *Converter) DecodeFields(ctx context.Context, fieldSetStruct any, fields map[string]cty.Value) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting field-set decoding.")

	structVal := reflect.ValueOf(fieldSetStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("fieldSetStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		tag := field.Tag.Get("dgo")
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		lookupName := parts[0]
		optional := len(parts) > 1 && parts[1] == "optional"

		val, present := fields[lookupName]
		if !present || val.IsNull() {
			if !optional {
				return fmt.Errorf("missing required field %q", lookupName)
			}
			continue
		}

		targetPtr := fieldVal.Addr().Interface()
		if err := c.decode(ctx, val, targetPtr); err != nil {
			return fmt.Errorf("failed to decode field %q: %w", lookupName, err)
		}
	}

	logger.Debug("Finished field-set decoding successfully.")
	return nil
}

// decode handles the conversion of a cty.Value into a Go pointer, converting
// the value to the pointer's implied cty type first so manifests may write
// e.g. a number where the Go side wants a string.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)

	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.",
			"go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w",
			val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(converted, goVal)
}
