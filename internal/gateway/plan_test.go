package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/internal/registry"
	apperrors "github.com/clinisys/backoffice/pkg/errors"
)

// fakeProbe answers reference lookups from an in-memory parent -> children
// table keyed by the referencing entity and foreign key field.
type fakeProbe struct {
	children map[string]map[int64][]int64
}

func (f *fakeProbe) key(ref registry.Reference) string {
	return ref.Entity + "." + ref.Relation.Field
}

func (f *fakeProbe) countRefs(ctx context.Context, ref registry.Reference, id int64) (int64, error) {
	return int64(len(f.children[f.key(ref)][id])), nil
}

func (f *fakeProbe) childIDs(ctx context.Context, ref registry.Reference, id int64) ([]int64, error) {
	return f.children[f.key(ref)][id], nil
}

func plannedQueries(t *testing.T, probe *fakeProbe, entityName string, id int64) []step {
	t.Helper()
	reg := registry.Clinical()
	gw := New(reg, nil, nil, nil)

	ent, err := reg.Describe(entityName)
	require.NoError(t, err)

	steps, err := gw.planDelete(context.Background(), probe, ent, id)
	require.NoError(t, err)
	return steps
}

func TestDeleteVisitCascadesClinicalChildren(t *testing.T) {
	probe := &fakeProbe{children: map[string]map[int64][]int64{
		"medical_records.visit_id":                 {1: {10}},
		"diagnoses.visit_id":                       {1: {20}},
		"prescriptions.visit_id":                   {1: {30}},
		"lab_tests.visit_id":                       {1: {50}},
		"prescription_medications.prescription_id": {30: {40}},
	}}

	steps := plannedQueries(t, probe, registry.Visits, 1)

	// Children go in declaration order; the prescription's own join rows go
	// before the prescription, and the visit itself goes last.
	require.Len(t, steps, 6)
	assert.Equal(t, "DELETE FROM medical_records WHERE id = $1", steps[0].query)
	assert.Equal(t, []interface{}{int64(10)}, steps[0].args)
	assert.Equal(t, "DELETE FROM diagnoses WHERE id = $1", steps[1].query)
	assert.Equal(t, []interface{}{int64(20)}, steps[1].args)
	assert.Equal(t, "DELETE FROM prescription_medications WHERE id = $1", steps[2].query)
	assert.Equal(t, []interface{}{int64(40)}, steps[2].args)
	assert.Equal(t, "DELETE FROM prescriptions WHERE id = $1", steps[3].query)
	assert.Equal(t, []interface{}{int64(30)}, steps[3].args)
	assert.Equal(t, "DELETE FROM lab_tests WHERE id = $1", steps[4].query)
	assert.Equal(t, []interface{}{int64(50)}, steps[4].args)
	assert.Equal(t, "DELETE FROM visits WHERE id = $1", steps[5].query)
	assert.Equal(t, []interface{}{int64(1)}, steps[5].args)
}

func TestDeleteAliasDetachesVisitsFirst(t *testing.T) {
	steps := plannedQueries(t, &fakeProbe{}, registry.Aliases, 5)

	require.Len(t, steps, 2)
	assert.Equal(t, "UPDATE visits SET alias_id = $1 WHERE alias_id = $2", steps[0].query)
	assert.Equal(t, []interface{}{nil, int64(5)}, steps[0].args)
	assert.Equal(t, "DELETE FROM aliases WHERE id = $1", steps[1].query)
	assert.Equal(t, []interface{}{int64(5)}, steps[1].args)
}

func TestDeleteDoctorDetachesVisits(t *testing.T) {
	steps := plannedQueries(t, &fakeProbe{}, registry.Doctors, 3)

	require.Len(t, steps, 2)
	assert.Equal(t, "UPDATE visits SET doctor_id = $1 WHERE doctor_id = $2", steps[0].query)
	assert.Equal(t, []interface{}{nil, int64(3)}, steps[0].args)
	assert.Equal(t, "DELETE FROM doctors WHERE id = $1", steps[1].query)
}

func TestDeletePatientCascadesThroughAlias(t *testing.T) {
	probe := &fakeProbe{children: map[string]map[int64][]int64{
		"aliases.patient_id": {7: {5}},
	}}

	steps := plannedQueries(t, probe, registry.Patients, 7)

	// The alias's own detach step runs before the alias is removed, and both
	// before the patient itself.
	require.Len(t, steps, 3)
	assert.Equal(t, "UPDATE visits SET alias_id = $1 WHERE alias_id = $2", steps[0].query)
	assert.Equal(t, []interface{}{nil, int64(5)}, steps[0].args)
	assert.Equal(t, "DELETE FROM aliases WHERE id = $1", steps[1].query)
	assert.Equal(t, []interface{}{int64(5)}, steps[1].args)
	assert.Equal(t, "DELETE FROM patients WHERE id = $1", steps[2].query)
	assert.Equal(t, []interface{}{int64(7)}, steps[2].args)
}

func TestDeleteReferencedKeyAborts(t *testing.T) {
	probe := &fakeProbe{children: map[string]map[int64][]int64{
		"aliases.key_id": {2: {5}},
	}}

	reg := registry.Clinical()
	gw := New(reg, nil, nil, nil)
	ent, err := reg.Describe(registry.EncryptionKeys)
	require.NoError(t, err)

	steps, err := gw.planDelete(context.Background(), probe, ent, 2)
	require.Error(t, err)
	assert.Nil(t, steps, "a protected parent must produce no plan at all")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "protected")
}

func TestDeleteUnreferencedKey(t *testing.T) {
	steps := plannedQueries(t, &fakeProbe{}, registry.EncryptionKeys, 2)

	require.Len(t, steps, 1)
	assert.Equal(t, "DELETE FROM encryption_keys WHERE id = $1", steps[0].query)
}
