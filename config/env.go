package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// loadFromEnv overlays environment variables onto cfg. Fields opt in with an
// `env:"NAME"` tag; nested structs are walked so their tags are honored too.
func loadFromEnv(cfg *Config) error {
	return walkEnv(reflect.ValueOf(cfg).Elem())
}

func walkEnv(val reflect.Value) error {
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", val.Kind())
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct && fieldType.Type != durationType {
			if err := walkEnv(field); err != nil {
				return err
			}
			continue
		}

		name := fieldType.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			continue
		}
		if err := assignEnvValue(field, fieldType, raw); err != nil {
			return fmt.Errorf("env var %s: %w", name, err)
		}
	}
	return nil
}

// assignEnvValue parses raw according to the field's type and sets it.
func assignEnvValue(field reflect.Value, fieldType reflect.StructField, raw string) error {
	if !field.CanSet() {
		return fmt.Errorf("field %s is not settable", fieldType.Name)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean value %q", raw)
		}
		field.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fieldType.Type == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid duration value %q", raw)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value %q", raw)
		}
		field.SetInt(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid float value %q", raw)
		}
		field.SetFloat(f)
		return nil

	case reflect.Slice:
		// comma-separated string lists only
		if fieldType.Type.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", fieldType.Type.Elem().Kind())
		}
		parts := strings.Split(raw, ",")
		slice := reflect.MakeSlice(fieldType.Type, len(parts), len(parts))
		for i, part := range parts {
			slice.Index(i).SetString(strings.TrimSpace(part))
		}
		field.Set(slice)
		return nil

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
}
