package gateway

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/internal/registry"
	apperrors "github.com/clinisys/backoffice/pkg/errors"
)

func entity(t *testing.T, name string) registry.Entity {
	t.Helper()
	ent, err := registry.Clinical().Describe(name)
	require.NoError(t, err)
	return ent
}

func TestEditableValuesIgnoresImmutableFields(t *testing.T) {
	patients := entity(t, registry.Patients)

	values, err := editableValues(patients, map[string]interface{}{
		"id":         float64(99),
		"created_at": "2024-01-01T00:00:00Z",
		"first_name": "Ada",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"first_name": "Ada"}, values)
}

func TestEditableValuesRequiresNonNullableOnCreate(t *testing.T) {
	visits := entity(t, registry.Visits)

	_, err := editableValues(visits, map[string]interface{}{
		"status": "scheduled",
	}, true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "visit_date")
}

func TestEditableValuesPartialUpdateSkipsAbsent(t *testing.T) {
	visits := entity(t, registry.Visits)

	values, err := editableValues(visits, map[string]interface{}{
		"reason": "follow-up",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"reason": "follow-up"}, values)
}

func TestCoerceEnumRejectsUnknownMember(t *testing.T) {
	visits := entity(t, registry.Visits)
	status, ok := visits.Field("status")
	require.True(t, ok)

	_, err := coerce(status, "postponed")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	v, err := coerce(status, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", v)
}

func TestCoerceIntegerFromJSONNumber(t *testing.T) {
	visits := entity(t, registry.Visits)
	doctorID, ok := visits.Field("doctor_id")
	require.True(t, ok)

	v, err := coerce(doctorID, float64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = coerce(doctorID, "17")
	require.NoError(t, err)
	assert.Equal(t, int64(17), v)

	_, err = coerce(doctorID, 3.5)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCoerceDateAndDateTime(t *testing.T) {
	patients := entity(t, registry.Patients)
	birth, ok := patients.Field("birth_date")
	require.True(t, ok)

	v, err := coerce(birth, "1984-06-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1984, 6, 15, 0, 0, 0, 0, time.UTC), v)

	visits := entity(t, registry.Visits)
	date, ok := visits.Field("visit_date")
	require.True(t, ok)

	v, err = coerce(date, "2024-03-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), v)

	// A bare date is accepted where a datetime is declared.
	_, err = coerce(date, "2024-03-01")
	require.NoError(t, err)

	_, err = coerce(date, "yesterday")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCoerceTextRejectsNonString(t *testing.T) {
	patients := entity(t, registry.Patients)
	name, ok := patients.Field("first_name")
	require.True(t, ok)

	_, err := coerce(name, 12)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestNormalizeRendersBytesByKind(t *testing.T) {
	aliases := entity(t, registry.Aliases)

	raw := []byte{0x01, 0x02, 0xff}
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), normalize(aliases, "iv", raw))

	assert.Equal(t, "hello", normalize(aliases, "encrypted_payload", []byte("hello")))
	assert.Equal(t, int64(5), normalize(aliases, "id", int64(5)))
}
