// Package pseudonym decouples a patient's real identity from all clinical
// records. Each patient is represented in clinical tables only by an alias
// whose linking payload is encrypted under a versioned key; compromising the
// clinical tables alone cannot re-identify patients.
package pseudonym

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
	"github.com/clinisys/backoffice/internal/service/audit"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/metrics"
	"github.com/clinisys/backoffice/pkg/security"
)

// linkingPayload is the plaintext an alias seals: enough to recover which
// patient the alias denotes, nothing more.
type linkingPayload struct {
	PatientID int64 `json:"patient_id"`
}

type Service struct {
	keys    repository.KeyRepository
	aliases repository.AliasRepository
	auditor *audit.Service
	metrics *metrics.Metrics
}

func NewService(keys repository.KeyRepository, aliases repository.AliasRepository, auditor *audit.Service, m *metrics.Metrics) *Service {
	return &Service{keys: keys, aliases: aliases, auditor: auditor, metrics: m}
}

// CreateAlias encrypts the linking payload for patientID under the active key
// with a fresh IV. Fails with NoActiveKey when no key is active.
func (s *Service) CreateAlias(ctx context.Context, actorID, patientID int64) (*model.Alias, error) {
	key, err := s.keys.Active(ctx)
	if err != nil {
		s.count("create", "error")
		return nil, err
	}

	cipher, err := security.NewCipher(key.KeyMaterial)
	if err != nil {
		s.count("create", "error")
		return nil, errors.Internal(err)
	}

	plaintext, err := json.Marshal(linkingPayload{PatientID: patientID})
	if err != nil {
		return nil, errors.Internal(err)
	}

	ciphertext, iv, err := cipher.Seal(plaintext)
	if err != nil {
		s.count("create", "error")
		return nil, errors.Internal(err)
	}

	alias := &model.Alias{
		PatientID:        patientID,
		EncryptedPayload: base64.StdEncoding.EncodeToString(ciphertext),
		KeyID:            key.ID,
		IV:               iv,
	}
	if err := s.aliases.Create(ctx, alias); err != nil {
		s.count("create", "error")
		return nil, err
	}

	s.auditor.Log(ctx, actorID, "create", "aliases", alias.ID, map[string]int64{"key_id": key.ID})
	s.count("create", "ok")
	return alias, nil
}

// ResolvePatient decrypts the alias payload with the key version the alias
// was sealed under, which is not necessarily the currently active one.
// Returns the id of the patient the alias denotes.
func (s *Service) ResolvePatient(ctx context.Context, aliasID int64) (int64, error) {
	alias, err := s.aliases.Get(ctx, aliasID)
	if err != nil {
		s.count("resolve", "error")
		return 0, err
	}
	return s.resolve(ctx, alias)
}

// ResolvePatientByAlias is the in-process variant for callers that already
// hold the alias row.
func (s *Service) ResolvePatientByAlias(ctx context.Context, alias *model.Alias) (int64, error) {
	return s.resolve(ctx, alias)
}

func (s *Service) resolve(ctx context.Context, alias *model.Alias) (int64, error) {
	key, err := s.keys.Get(ctx, alias.KeyID)
	if err != nil {
		s.count("resolve", "key_unavailable")
		return 0, err
	}

	cipher, err := security.NewCipher(key.KeyMaterial)
	if err != nil {
		s.count("resolve", "error")
		return 0, errors.Internal(err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(alias.EncryptedPayload)
	if err != nil {
		s.count("resolve", "corrupt")
		return 0, errors.DecryptionFailed(err)
	}

	plaintext, err := cipher.Open(ciphertext, alias.IV)
	if err != nil {
		s.count("resolve", "corrupt")
		return 0, errors.DecryptionFailed(err)
	}

	var payload linkingPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		s.count("resolve", "corrupt")
		return 0, errors.DecryptionFailed(err)
	}
	if payload.PatientID != alias.PatientID {
		s.count("resolve", "corrupt")
		return 0, errors.DecryptionFailed(fmt.Errorf("payload patient %d does not match alias patient %d", payload.PatientID, alias.PatientID))
	}

	s.count("resolve", "ok")
	return payload.PatientID, nil
}

// RotateKey deactivates the current active key and activates a fresh one.
// Rotation is forward-only: existing aliases are not re-encrypted and stay
// valid as long as their original key row exists.
func (s *Service) RotateKey(ctx context.Context, actorID int64) (*model.EncryptionKey, error) {
	material, err := security.GenerateKey()
	if err != nil {
		return nil, errors.Internal(err)
	}

	key, err := s.keys.Rotate(ctx, material)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, "rotate", "encryption_keys", key.ID, nil)
	if s.metrics != nil {
		s.metrics.KeyRotations.Inc()
	}
	return key, nil
}

// PurgeKey physically removes an inactive, unreferenced key version.
func (s *Service) PurgeKey(ctx context.Context, actorID, keyID int64) error {
	if err := s.keys.Purge(ctx, keyID); err != nil {
		return err
	}
	s.auditor.Log(ctx, actorID, "purge", "encryption_keys", keyID, nil)
	return nil
}

func (s *Service) count(op, outcome string) {
	if s.metrics != nil {
		s.metrics.AliasOperations.WithLabelValues(op, outcome).Inc()
	}
}
