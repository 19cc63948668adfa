package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/health-records-service/internal/clock"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/repository/memory"
)

const adminID = "admin-1"

// fixture wires every service over in-memory repositories, a manual clock,
// and a bootstrapped administrator.
type fixture struct {
	ctx        context.Context
	clock      *clock.Manual
	roles      *memory.RoleRepository
	recordRepo *memory.RecordRepository
	auditRepo  *memory.AuditRepository
	dispatcher events.Dispatcher
	authority  *AuthorityService
	vault      *VaultService
	consents   *ConsentService
	scheduler  *SchedulerService
	audit      *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	clk := clock.NewManual(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher()
	roles := memory.NewRoleRepository()
	records := memory.NewRecordRepository()
	consentRepo := memory.NewConsentRepository()
	appointments := memory.NewAppointmentRepository()
	auditRepo := memory.NewAuditRepository()

	authority := NewAuthorityService(roles, dispatcher, clk)
	f := &fixture{
		ctx:        ctx,
		clock:      clk,
		roles:      roles,
		recordRepo: records,
		auditRepo:  auditRepo,
		dispatcher: dispatcher,
		authority:  authority,
		vault:      NewVaultService(records, authority, dispatcher, clk),
		consents:   NewConsentService(consentRepo, dispatcher, clk),
		scheduler:  NewSchedulerService(appointments, authority, dispatcher, clk),
	}
	f.audit = NewAuditService(dispatcher, auditRepo, authority, zap.NewNop())
	f.audit.RegisterHandlers()

	require.NoError(t, f.authority.Bootstrap(ctx, adminID))
	return f
}

func (f *fixture) grant(t *testing.T, principalID string, role domain.Role) {
	t.Helper()
	require.NoError(t, f.authority.Grant(f.ctx, adminID, principalID, role))
}

func (f *fixture) suspend(t *testing.T, principalID string) {
	t.Helper()
	require.NoError(t, f.authority.SetActive(f.ctx, adminID, principalID, false))
}

func (f *fixture) futureTime(d time.Duration) time.Time {
	return f.clock.Now().Add(d)
}
