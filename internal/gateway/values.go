package gateway

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/pkg/errors"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// editableValues projects the caller's input onto the entity's editable
// fields, coercing each value to its declared kind. Non-editable fields
// present in the input (id, timestamps, credential and key material) are
// silently ignored rather than rejected; foreign keys are assigned by id.
// When requireAll is set, a missing non-nullable editable field is a
// validation error (create semantics); otherwise absent fields are left
// untouched (partial update semantics).
func editableValues(ent registry.Entity, input map[string]interface{}, requireAll bool) (map[string]interface{}, error) {
	out := make(map[string]interface{})

	for _, f := range ent.Fields {
		if !f.Editable {
			continue
		}

		raw, present := input[f.Name]
		if !present || raw == nil || raw == "" {
			if requireAll && !f.Nullable {
				return nil, errors.Validation(fmt.Sprintf("field %q is required", f.Name), nil)
			}
			continue
		}

		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}

	return out, nil
}

// coerce converts raw into the Go value matching the field's kind.
func coerce(f registry.Field, raw interface{}) (interface{}, error) {
	switch f.Kind {
	case registry.KindText:
		s, ok := raw.(string)
		if !ok {
			return nil, badValue(f, raw)
		}
		return s, nil

	case registry.KindInteger, registry.KindForeignKey:
		return coerceInt(f, raw)

	case registry.KindDate:
		return coerceTime(f, raw, dateLayout)

	case registry.KindDateTime:
		return coerceTime(f, raw, dateTimeLayout)

	case registry.KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, badValue(f, raw)
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, errors.Validation(fmt.Sprintf("field %q must be one of %v", f.Name, f.Enum), nil)

	case registry.KindBinary:
		switch v := raw.(type) {
		case []byte:
			return v, nil
		case string:
			data, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, errors.Validation(fmt.Sprintf("field %q is not valid base64", f.Name), err)
			}
			return data, nil
		}
		return nil, badValue(f, raw)
	}

	return nil, badValue(f, raw)
}

func coerceInt(f registry.Field, raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		// JSON numbers decode as float64.
		if v != float64(int64(v)) {
			return 0, badValue(f, raw)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, badValue(f, raw)
		}
		return n, nil
	}
	return 0, badValue(f, raw)
}

func coerceTime(f registry.Field, raw interface{}, layout string) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
		// Accept the other temporal layout too; clients are not always
		// careful about date vs datetime.
		if t, err := time.Parse(dateTimeLayout, v); err == nil {
			return t, nil
		}
		if t, err := time.Parse(dateLayout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, badValue(f, raw)
}

func badValue(f registry.Field, raw interface{}) *errors.AppError {
	return errors.Validation(fmt.Sprintf("field %q has invalid %s value %v", f.Name, f.Kind, raw), nil)
}

// normalize converts driver values into presentable ones: text arrives from
// lib/pq as []byte, binary columns are base64-encoded for transport.
func normalize(ent registry.Entity, column string, v interface{}) interface{} {
	b, isBytes := v.([]byte)
	if !isBytes {
		return v
	}

	if f, ok := ent.Field(column); ok && f.Kind == registry.KindBinary {
		return base64.StdEncoding.EncodeToString(b)
	}
	return string(b)
}
