package db

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// decodeDocument decodes doc.Data into out using the models' firestore tags.
func decodeDocument(doc Document, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "firestore",
		Result:  out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			lenientFloatHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(doc.Data); err != nil {
		return fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	return nil
}

// lenientFloatHook turns values that are not numbers into 0 for float
// fields, so a corrupt price or limit never rejects the whole document.
func lenientFloatHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Float64 {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return 0.0, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0.0, nil
		}
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0.0, nil
		}
		return f, nil
	case bool, map[string]interface{}, []interface{}, time.Time:
		return 0.0, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32:
		return data, nil
	}
	return 0.0, nil
}
