package runtime

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// mapToStruct decodes m into target using the given struct tag for field
// names. Durations and RFC 3339 timestamps are accepted as strings, and
// scalar types are coerced ("8080" into an int field).
func mapToStruct(m map[string]any, target any, tagName string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: tagName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode map to struct: %w", err)
	}

	return nil
}

// mapToStructFromYAML decodes using yaml tags, the tag config structs carry.
func mapToStructFromYAML(m map[string]any, target any) error {
	return mapToStruct(m, target, "yaml")
}
