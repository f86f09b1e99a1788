package model

import "time"

// EncryptionKey is one version of alias key material. At most one key is
// active at a time; deactivated keys stay on file so existing aliases keep
// decrypting.
type EncryptionKey struct {
	ID          int64     `json:"id" db:"id"`
	KeyMaterial []byte    `json:"-" db:"key_material"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Alias is the encrypted indirection standing in for a patient's identity in
// clinical records. Clinical tables reference aliases, never patients.
type Alias struct {
	ID               int64     `json:"id" db:"id"`
	PatientID        int64     `json:"patient_id" db:"patient_id"`
	EncryptedPayload string    `json:"-" db:"encrypted_payload"`
	KeyID            int64     `json:"key_id" db:"key_id"`
	IV               []byte    `json:"-" db:"iv"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
