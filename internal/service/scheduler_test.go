package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/health-records-service/internal/domain"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

const (
	receptionistID = "front-desk"
	doctorID       = "dr-house"
)

func newSchedulerFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.grant(t, receptionistID, domain.RoleReceptionist)
	f.grant(t, patientID, domain.RolePatient)
	f.grant(t, doctorID, domain.RoleDoctor)
	return f
}

func (f *fixture) schedule(t *testing.T) *domain.Appointment {
	t.Helper()
	appointment, err := f.scheduler.Schedule(f.ctx, receptionistID, patientID, doctorID, f.futureTime(24*time.Hour))
	require.NoError(t, err)
	return appointment
}

func TestScheduleRequiresReceptionist(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.scheduler.Schedule(f.ctx, doctorID, patientID, doctorID, f.futureTime(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	f.suspend(t, receptionistID)
	_, err = f.scheduler.Schedule(f.ctx, receptionistID, patientID, doctorID, f.futureTime(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestScheduleRejectsNonFutureTime(t *testing.T) {
	f := newSchedulerFixture(t)

	for _, at := range []time.Time{f.clock.Now(), f.clock.Now().Add(-time.Hour)} {
		_, err := f.scheduler.Schedule(f.ctx, receptionistID, patientID, doctorID, at)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeTimeInPast, apperrors.CodeOf(err))
	}
}

func TestScheduleValidatesBothParties(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.scheduler.Schedule(f.ctx, receptionistID, "stranger", doctorID, f.futureTime(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidSubject, apperrors.CodeOf(err))

	_, err = f.scheduler.Schedule(f.ctx, receptionistID, patientID, "stranger", f.futureTime(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidCounterpart, apperrors.CodeOf(err))

	// a suspended doctor fails the counterpart check too
	f.suspend(t, doctorID)
	_, err = f.scheduler.Schedule(f.ctx, receptionistID, patientID, doctorID, f.futureTime(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidCounterpart, apperrors.CodeOf(err))
}

func TestConfirmRequiresNamedCounterpartWithLiveRole(t *testing.T) {
	f := newSchedulerFixture(t)
	f.grant(t, "dr-wilson", domain.RoleDoctor)
	appointment := f.schedule(t)

	// a different doctor is not the named counterpart
	_, err := f.scheduler.Confirm(f.ctx, "dr-wilson", appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotYourAppointment, apperrors.CodeOf(err))

	// being named is necessary but not sufficient
	f.suspend(t, doctorID)
	_, err = f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	require.NoError(t, f.authority.SetActive(f.ctx, adminID, doctorID, true))
	confirmed, err := f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusConfirmed, confirmed.Status)
}

func TestConfirmOnlyFromScheduled(t *testing.T) {
	f := newSchedulerFixture(t)
	appointment := f.schedule(t)

	_, err := f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.NoError(t, err)

	_, err = f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeWrongState, apperrors.CodeOf(err))

	canceled := f.schedule(t)
	_, err = f.scheduler.Cancel(f.ctx, patientID, canceled.ID)
	require.NoError(t, err)
	_, err = f.scheduler.Confirm(f.ctx, doctorID, canceled.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeWrongState, apperrors.CodeOf(err))
}

func TestCancelReachableByEveryAffectedParty(t *testing.T) {
	f := newSchedulerFixture(t)

	for _, actor := range []string{patientID, doctorID, receptionistID} {
		appointment := f.schedule(t)
		canceled, err := f.scheduler.Cancel(f.ctx, actor, appointment.ID)
		require.NoError(t, err, "cancel by %s", actor)
		assert.Equal(t, domain.AppointmentStatusCanceled, canceled.Status)
	}

	appointment := f.schedule(t)
	_, err := f.scheduler.Cancel(f.ctx, "stranger", appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestCancelConfirmedButNeverTwice(t *testing.T) {
	f := newSchedulerFixture(t)
	appointment := f.schedule(t)

	_, err := f.scheduler.Confirm(f.ctx, doctorID, appointment.ID)
	require.NoError(t, err)

	_, err = f.scheduler.Cancel(f.ctx, patientID, appointment.ID)
	require.NoError(t, err)

	_, err = f.scheduler.Cancel(f.ctx, patientID, appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyCanceled, apperrors.CodeOf(err))
}

func TestAppointmentIDsDenseFromOne(t *testing.T) {
	f := newSchedulerFixture(t)

	first := f.schedule(t)
	second := f.schedule(t)
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)

	_, err := f.scheduler.GetDetails(f.ctx, patientID, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestAppointmentReadsRestrictedToParties(t *testing.T) {
	f := newSchedulerFixture(t)
	appointment := f.schedule(t)

	for _, actor := range []string{patientID, doctorID, receptionistID} {
		_, err := f.scheduler.GetDetails(f.ctx, actor, appointment.ID)
		require.NoError(t, err, "read by %s", actor)
	}

	_, err := f.scheduler.GetDetails(f.ctx, "stranger", appointment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = f.scheduler.ListFor(f.ctx, doctorID, patientID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	listed, err := f.scheduler.ListFor(f.ctx, receptionistID, patientID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
