package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditColumns = []string{
	"id", "occurred_at", "actor", "action", "resource", "resource_id",
	"outcome", "request_id", "client_ip", "user_agent", "details",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStoreAppendSendsAllColumns(t *testing.T) {
	store, mock := newMockStore(t)
	event := Event{
		ID:         uuid.MustParse("0b7e9c43-59a4-4b43-9bd4-0a2ad0f1f001"),
		OccurredAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Actor:      "jane",
		Action:     ActionKeyLoanCreated,
		Resource:   "key_loan",
		ResourceID: "KL-1",
		Outcome:    OutcomeSuccess,
		RequestID:  "req-1",
		ClientIP:   "192.0.2.1",
		UserAgent:  "Firefox on Linux",
		Details:    map[string]string{"keyId": "K-1"},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WithArgs(event.ID, event.OccurredAt, "jane", "key_loan_created", "key_loan", "KL-1",
			"success", "req-1", "192.0.2.1", "Firefox on Linux", []byte(`{"keyId":"K-1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Append(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendWrapsErrors(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO audit_events").WillReturnError(errors.New("connection reset"))

	err := store.Append(context.Background(), Event{ID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit event")
}

func TestPostgresStoreListBuildsFilteredQuery(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.MustParse("0b7e9c43-59a4-4b43-9bd4-0a2ad0f1f002")
	at := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE resource = $1 AND resource_id = $2 ORDER BY occurred_at DESC LIMIT $3")).
		WithArgs("component", "C-9", 5).
		WillReturnRows(sqlmock.NewRows(auditColumns).AddRow(
			id.String(), at, "jane", "component_deleted", "component", "C-9",
			"failure", "req-2", "192.0.2.2", "", []byte(`{"error_kind":"conflict"}`),
		))

	events, err := store.List(context.Background(), Filter{Resource: "component", ResourceID: "C-9", Limit: 5})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, ActionComponentDeleted, events[0].Action)
	assert.Equal(t, OutcomeFailure, events[0].Outcome)
	assert.Equal(t, map[string]string{"error_kind": "conflict"}, events[0].Details)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListWithoutFilter(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_events ORDER BY occurred_at DESC LIMIT $1")).
		WithArgs(Filter{}.limit()).
		WillReturnRows(sqlmock.NewRows(auditColumns))

	events, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}
