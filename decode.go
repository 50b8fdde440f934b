// FILE: lixenwraith/settings/decode.go
package settings

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ScanTagName is the struct tag consulted when decoding sections into structs.
const ScanTagName = "settings"

// Scan decodes the subtree at path into target, a non-nil pointer to a struct or map.
// Scalars are strings in the tree, so conversion relies on weakly typed input.
func (t *Tree) Scan(path string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: scan target must be non-nil pointer, got %T", ErrInvalidArgument, target)
	}

	node, found := t.Lookup(path)
	if !found {
		return fmt.Errorf("path not found: %s", path)
	}
	section, ok := node.(*Tree)
	if !ok {
		return fmt.Errorf("path %q refers to non-section value (type %T)", path, node)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          ScanTagName,
		WeaklyTypedInput: true,
		DecodeHook:       scanDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(section.Map()); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", path, err)
	}
	return nil
}

// scanDecodeHook converts the string scalars of a tree into richer Go types.
func scanDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		mapstructure.TextUnmarshallerHookFunc(),
		emptyStringToSliceHookFunc(),
	)
}

// emptyStringToSliceHookFunc decodes "" into an empty slice instead of
// the one-element slice weak typing would produce.
func emptyStringToSliceHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		if data.(string) == "" {
			return []any{}, nil
		}
		return data, nil
	}
}
