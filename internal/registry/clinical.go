package registry

// Entity names used across the policy engine, gateway and export path.
const (
	SystemUsers             = "system_users"
	Doctors                 = "doctors"
	Patients                = "patients"
	Aliases                 = "aliases"
	EncryptionKeys          = "encryption_keys"
	Visits                  = "visits"
	MedicalRecords          = "medical_records"
	Diagnoses               = "diagnoses"
	Prescriptions           = "prescriptions"
	Medications             = "medications"
	PrescriptionMedications = "prescription_medications"
	LabTests                = "lab_tests"
	ActionLogs              = "action_logs"
)

// RoleValues and VisitStatusValues are the enum value sets carried by the
// corresponding fields.
var (
	RoleValues        = []string{"admin", "doctor"}
	VisitStatusValues = []string{"scheduled", "in_progress", "completed", "cancelled"}
)

func id() Field {
	return Field{Name: "id", Kind: KindInteger}
}

func createdAt() Field {
	return Field{Name: "created_at", Kind: KindDateTime}
}

func fk(name string) Field {
	return Field{Name: name, Kind: KindForeignKey, Editable: true}
}

// Clinical builds the fixed clinical schema. Declaration order here drives
// column order everywhere a table is rendered or exported.
func Clinical() *Registry {
	return New(
		Entity{
			Name: SystemUsers,
			Fields: []Field{
				id(),
				{Name: "email", Kind: KindText, Unique: true, Editable: true},
				{Name: "hashed_password", Kind: KindText, Sensitive: true},
				{Name: "full_name", Kind: KindText, Nullable: true, Editable: true},
				{Name: "role", Kind: KindEnum, Enum: RoleValues, Editable: true},
				createdAt(),
				{Name: "updated_at", Kind: KindDateTime},
			},
		},
		Entity{
			Name: Doctors,
			Fields: []Field{
				id(),
				{Name: "user_id", Kind: KindForeignKey, Unique: true},
				{Name: "first_name", Kind: KindText, Nullable: true, Editable: true},
				{Name: "last_name", Kind: KindText, Nullable: true, Editable: true},
				{Name: "specialization", Kind: KindText, Nullable: true, Editable: true},
				{Name: "license_number", Kind: KindText, Unique: true, Editable: true},
				{Name: "phone", Kind: KindText, Nullable: true, Unique: true, Editable: true},
				{Name: "email", Kind: KindText, Nullable: true, Unique: true, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "user_id", Target: SystemUsers, OnDelete: Cascade},
			},
		},
		Entity{
			Name:      Patients,
			Creatable: true,
			Fields: []Field{
				id(),
				{Name: "first_name", Kind: KindText, Nullable: true, Editable: true},
				{Name: "last_name", Kind: KindText, Nullable: true, Editable: true},
				{Name: "birth_date", Kind: KindDate, Nullable: true, Editable: true},
				{Name: "phone", Kind: KindText, Nullable: true, Unique: true, Editable: true},
				{Name: "email", Kind: KindText, Nullable: true, Unique: true, Editable: true},
				createdAt(),
			},
		},
		Entity{
			Name: Aliases,
			Fields: []Field{
				id(),
				{Name: "patient_id", Kind: KindForeignKey, Unique: true},
				{Name: "encrypted_payload", Kind: KindText, Sensitive: true},
				{Name: "key_id", Kind: KindForeignKey},
				{Name: "iv", Kind: KindBinary, Sensitive: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "patient_id", Target: Patients, OnDelete: Cascade},
				{Field: "key_id", Target: EncryptionKeys, OnDelete: Protect},
			},
		},
		Entity{
			Name: EncryptionKeys,
			Fields: []Field{
				id(),
				{Name: "key_material", Kind: KindBinary, Sensitive: true},
				// Stored as a boolean; the kind set has no boolean member.
				// The field is never editable, so the kind is a rendering
				// hint only and listings pass the driver's bool through.
				{Name: "is_active", Kind: KindInteger},
				createdAt(),
			},
		},
		Entity{
			Name:      Visits,
			Creatable: true,
			Fields: []Field{
				id(),
				{Name: "alias_id", Kind: KindForeignKey, Nullable: true, Editable: true},
				{Name: "doctor_id", Kind: KindForeignKey, Nullable: true, Editable: true},
				{Name: "visit_date", Kind: KindDateTime, Editable: true},
				{Name: "reason", Kind: KindText, Nullable: true, Editable: true},
				{Name: "status", Kind: KindEnum, Enum: VisitStatusValues, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "alias_id", Target: Aliases, OnDelete: SetNull},
				{Field: "doctor_id", Target: Doctors, OnDelete: SetNull},
			},
		},
		Entity{
			Name:      MedicalRecords,
			Creatable: true,
			Fields: []Field{
				id(),
				fk("visit_id"),
				{Name: "record_type", Kind: KindText, Editable: true},
				{Name: "content", Kind: KindText, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "visit_id", Target: Visits, OnDelete: Cascade},
			},
		},
		Entity{
			Name:      Diagnoses,
			Creatable: true,
			Fields: []Field{
				id(),
				fk("visit_id"),
				{Name: "icd_code", Kind: KindText, Editable: true},
				{Name: "description", Kind: KindText, Nullable: true, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "visit_id", Target: Visits, OnDelete: Cascade},
			},
		},
		Entity{
			Name:      Prescriptions,
			Creatable: true,
			Fields: []Field{
				id(),
				fk("visit_id"),
				{Name: "adjustments", Kind: KindText, Nullable: true, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "visit_id", Target: Visits, OnDelete: Cascade},
			},
		},
		Entity{
			Name:      Medications,
			Creatable: true,
			Fields: []Field{
				id(),
				{Name: "name", Kind: KindText, Unique: true, Editable: true},
				{Name: "dosage", Kind: KindText, Nullable: true, Editable: true},
				{Name: "instruction", Kind: KindText, Nullable: true, Editable: true},
				createdAt(),
			},
		},
		Entity{
			Name:      PrescriptionMedications,
			Creatable: true,
			Fields: []Field{
				id(),
				fk("prescription_id"),
				fk("medication_id"),
			},
			Relations: []Relation{
				{Field: "prescription_id", Target: Prescriptions, OnDelete: Cascade},
				{Field: "medication_id", Target: Medications, OnDelete: Cascade},
			},
		},
		Entity{
			Name:      LabTests,
			Creatable: true,
			Fields: []Field{
				id(),
				fk("visit_id"),
				{Name: "test_type", Kind: KindText, Editable: true},
				{Name: "ordered_at", Kind: KindDateTime, Editable: true},
				{Name: "result", Kind: KindText, Nullable: true, Editable: true},
				{Name: "result_at", Kind: KindDateTime, Nullable: true, Editable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "visit_id", Target: Visits, OnDelete: Cascade},
			},
		},
		Entity{
			Name: ActionLogs,
			Fields: []Field{
				id(),
				{Name: "user_id", Kind: KindForeignKey, Nullable: true},
				{Name: "action_type", Kind: KindText},
				{Name: "entity", Kind: KindText},
				{Name: "entity_id", Kind: KindInteger, Nullable: true},
				{Name: "details", Kind: KindText, Nullable: true},
				createdAt(),
			},
			Relations: []Relation{
				{Field: "user_id", Target: SystemUsers, OnDelete: SetNull},
			},
		},
	)
}
