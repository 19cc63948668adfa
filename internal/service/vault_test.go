package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/health-records-service/internal/domain"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

const (
	writerID  = "writer-gw"
	patientID = "pat-1"
)

func newVaultFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.grant(t, patientID, domain.RolePatient)
	require.NoError(t, f.vault.SetAuthorizedWriter(f.ctx, adminID, writerID))
	return f
}

func TestVaultFailsClosedWithoutWriter(t *testing.T) {
	f := newFixture(t)
	f.grant(t, patientID, domain.RolePatient)

	_, err := f.vault.AddRecord(f.ctx, "anyone", "dr-house", patientID, "dx", "tx")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestAdminWritesWithoutHoldingTheSlot(t *testing.T) {
	f := newFixture(t)
	f.grant(t, patientID, domain.RolePatient)

	record, err := f.vault.AddRecord(f.ctx, adminID, "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), record.ID)
}

func TestSetAuthorizedWriterAdminOnly(t *testing.T) {
	f := newFixture(t)

	err := f.vault.SetAuthorizedWriter(f.ctx, "nobody", writerID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestReplacingWriterEvictsOldWriter(t *testing.T) {
	f := newVaultFixture(t)

	_, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)

	require.NoError(t, f.vault.SetAuthorizedWriter(f.ctx, adminID, "writer-2"))

	_, err = f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = f.vault.AddRecord(f.ctx, "writer-2", "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)
}

func TestAddRecordRequiresActivePatientSubject(t *testing.T) {
	f := newVaultFixture(t)

	_, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", "stranger", "dx", "tx")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidSubject, apperrors.CodeOf(err))

	f.suspend(t, patientID)
	_, err = f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidSubject, apperrors.CodeOf(err))
}

func TestRecordIDsDenseFromOne(t *testing.T) {
	f := newVaultFixture(t)

	first, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx-1", "tx-1")
	require.NoError(t, err)
	second, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx-2", "tx-2")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)

	// id 0 is the "does not exist" sentinel
	_, err = f.vault.GetByID(f.ctx, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	// archival does not free the id
	require.NoError(t, f.vault.Archive(f.ctx, writerID, first.ID))
	third, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx-3", "tx-3")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), third.ID)
}

func TestUpdatePreservesIdentityFields(t *testing.T) {
	f := newVaultFixture(t)

	created, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)

	updated, err := f.vault.UpdateRecord(f.ctx, writerID, created.ID, "dx-revised", "tx-revised")
	require.NoError(t, err)
	assert.Equal(t, "dx-revised", updated.Diagnosis)
	assert.Equal(t, "tx-revised", updated.Treatment)
	assert.Equal(t, created.AuthorID, updated.AuthorID)
	assert.Equal(t, created.SubjectID, updated.SubjectID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestArchiveIsOneWay(t *testing.T) {
	f := newVaultFixture(t)

	record, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)
	require.NoError(t, f.vault.Archive(f.ctx, writerID, record.ID))

	_, err = f.vault.UpdateRecord(f.ctx, writerID, record.ID, "dx-late", "tx-late")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeArchived, apperrors.CodeOf(err))

	err = f.vault.Archive(f.ctx, writerID, record.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyArchived, apperrors.CodeOf(err))

	// the archived record still reads back, inactive
	stored, err := f.vault.GetByID(f.ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestListBySubjectInIDOrder(t *testing.T) {
	f := newVaultFixture(t)
	f.grant(t, "pat-2", domain.RolePatient)

	for _, subject := range []string{patientID, "pat-2", patientID} {
		_, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", subject, "dx", "tx")
		require.NoError(t, err)
	}

	records, err := f.vault.ListBySubject(f.ctx, patientID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].ID)
	assert.Equal(t, uint64(3), records[1].ID)
}

func TestSuspendedWriterKeepsSlotAccess(t *testing.T) {
	// the slot is a capability, not a role: suspension gates role checks,
	// and the writer match is an identity comparison, not a role check
	f := newVaultFixture(t)
	f.grant(t, writerID, domain.RoleDoctor)
	f.suspend(t, writerID)

	_, err := f.vault.AddRecord(f.ctx, writerID, "dr-house", patientID, "dx", "tx")
	require.NoError(t, err)
}
