package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/health-records-service/internal/domain"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// A full record lifecycle: provision roles and the writer slot, author a
// record, archive it, and verify the archive is final.
func TestRecordLifecycle(t *testing.T) {
	f := newFixture(t)
	f.grant(t, doctorID, domain.RoleDoctor)
	f.grant(t, patientID, domain.RolePatient)
	require.NoError(t, f.vault.SetAuthorizedWriter(f.ctx, adminID, writerID))

	record, err := f.vault.AddRecord(f.ctx, writerID, doctorID, patientID, "dx", "tx")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), record.ID)

	listed, err := f.vault.ListBySubject(f.ctx, patientID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, uint64(1), listed[0].ID)

	require.NoError(t, f.vault.Archive(f.ctx, writerID, record.ID))

	_, err = f.vault.UpdateRecord(f.ctx, writerID, record.ID, "dx-late", "tx-late")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeArchived, apperrors.CodeOf(err))
}

// A consent window lapses by clock movement alone: no revoke, no write of
// any kind between the positive and the negative check.
func TestConsentLapsesWithoutIntervention(t *testing.T) {
	f := newFixture(t)

	_, err := f.consents.GiveConsent(f.ctx, patientID, "pharm-1", 10)
	require.NoError(t, err)

	ok, err := f.consents.CheckConsent(f.ctx, patientID, "pharm-1")
	require.NoError(t, err)
	assert.True(t, ok)

	f.clock.Advance(10*24*time.Hour + time.Minute)

	ok, err = f.consents.CheckConsent(f.ctx, patientID, "pharm-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// A full appointment lifecycle: schedule, confirm by the counterpart, a
// stranger's cancel bounces, the subject cancels, and the late confirm fails.
func TestAppointmentLifecycle(t *testing.T) {
	f := newFixture(t)
	f.grant(t, receptionistID, domain.RoleReceptionist)
	f.grant(t, patientID, domain.RolePatient)
	f.grant(t, doctorID, domain.RoleDoctor)

	appointment, err := f.scheduler.Schedule(f.ctx, receptionistID, patientID, doctorID, f.futureTime(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), appointment.ID)
	assert.Equal(t, domain.AppointmentStatusScheduled, appointment.Status)

	confirmed, err := f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusConfirmed, confirmed.Status)

	_, err = f.scheduler.Cancel(f.ctx, "stranger", appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	canceled, err := f.scheduler.Cancel(f.ctx, patientID, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCanceled, canceled.Status)

	_, err = f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeWrongState, apperrors.CodeOf(err))
}

// Every successful mutation leaves exactly one audit entry; failed calls
// leave none.
func TestAuditTrailCoversMutations(t *testing.T) {
	f := newFixture(t)
	f.grant(t, patientID, domain.RolePatient)                              // role_granted
	require.NoError(t, f.vault.SetAuthorizedWriter(f.ctx, adminID, writerID)) // authorized_writer_changed

	record, err := f.vault.AddRecord(f.ctx, writerID, doctorID, patientID, "dx", "tx") // record_added
	require.NoError(t, err)
	require.NoError(t, f.vault.Archive(f.ctx, writerID, record.ID)) // record_archived

	// a failed call emits nothing
	err = f.vault.Archive(f.ctx, writerID, record.ID)
	require.Error(t, err)

	entries := f.auditRepo.All()
	var types []string
	for _, entry := range entries {
		types = append(types, entry.EventType)
	}
	assert.Equal(t, []string{
		"role_granted", // bootstrap
		"role_granted",
		"authorized_writer_changed",
		"record_added",
		"record_archived",
	}, types)

	for _, entry := range entries {
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.ActorID)
		assert.False(t, entry.OccurredAt.IsZero())
	}
}

func TestAuditListAdminOnly(t *testing.T) {
	f := newFixture(t)
	f.grant(t, patientID, domain.RolePatient)

	_, err := f.audit.ListEntries(f.ctx, patientID, 10, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	entries, err := f.audit.ListEntries(f.ctx, adminID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, "role_granted", entries[0].EventType)
	assert.Equal(t, patientID, entries[0].EntityID)
}
