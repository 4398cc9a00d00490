package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

func TestRecordService_RefreshesOnlyWhenNeeded(t *testing.T) {
	fc := newFakeClient()
	fc.page = &client.RecordPage{Records: []models.Record{{"recordId": models.String("1")}}, Code: "0"}
	m, clock := newTestManager(t, fc)
	svc := NewRecordService(fc, m, testCredential, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, "People", 10)
	require.NoError(t, err)
	assert.Same(t, fc.page, page)

	_, err = svc.List(ctx, "People", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.Creates(), "active token is reused")

	clock.Advance(16 * time.Minute)
	_, err = svc.List(ctx, "People", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.Creates(), "expired token is refreshed")

	calls := fc.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "token-1", calls[0].token)
	assert.Equal(t, "token-1", calls[1].token)
	assert.Equal(t, "token-2", calls[2].token)
	assert.Equal(t, call{op: client.OpListRecords, token: "token-1", layout: "People", limit: 10}, calls[0])
}

func TestRecordService_InvalidTokenIsNotRetried(t *testing.T) {
	fc := newFakeClient()
	fc.rejected["token-1"] = true
	m, _ := newTestManager(t, fc)
	svc := NewRecordService(fc, m, testCredential, nil)

	_, err := svc.Delete(context.Background(), "People", "7")
	require.ErrorIs(t, err, client.ErrAPI)
	apiErr, ok := client.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.InvalidToken())
	assert.Len(t, fc.Calls(), 1)
	assert.Equal(t, 1, fc.Creates())

	// The caller decides to log in again; the next call uses the new token.
	_, err = NewAuthService(m).Login(context.Background(), testCredential)
	require.NoError(t, err)
	_, err = svc.Delete(context.Background(), "People", "7")
	require.NoError(t, err)
	assert.Equal(t, "token-2", fc.Calls()[1].token)
}

func TestRecordService_ErrorsPassThrough(t *testing.T) {
	fc := newFakeClient()
	fc.err = &client.Error{Op: client.OpGetRecord, Kind: client.ErrNotFound, Err: errors.New(`layout "People" has no record "9"`)}
	m, _ := newTestManager(t, fc)
	svc := NewRecordService(fc, m, testCredential, nil)

	_, err := svc.Get(context.Background(), "People", "9")
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Len(t, fc.Calls(), 1)
	assert.Equal(t, 1, fc.Creates())
}

func TestRecordService_RefreshFailureSkipsCall(t *testing.T) {
	fc := newFakeClient()
	fc.createErr = &client.Error{Op: client.OpCreateSession, Kind: client.ErrNetwork, Err: errors.New("dial tcp: connection refused")}
	m, _ := newTestManager(t, fc)
	svc := NewRecordService(fc, m, testCredential, nil)

	_, err := svc.Find(context.Background(), "People", models.Payload{"query": []any{map[string]any{"firstName": "Brian"}}})
	require.ErrorIs(t, err, client.ErrNetwork)
	assert.Empty(t, fc.Calls())

	svc = NewRecordService(fc, m, "", nil)
	_, err = svc.List(context.Background(), "People", 10)
	require.ErrorIs(t, err, client.ErrConfigMissing)
	assert.Empty(t, fc.Calls())
}

func TestRecordService_PassesArguments(t *testing.T) {
	fc := newFakeClient()
	fc.page = &client.RecordPage{Code: "0"}
	m, _ := newTestManager(t, fc)
	svc := NewRecordService(fc, m, testCredential, nil)
	ctx := context.Background()

	query := models.Payload{"query": []any{map[string]any{"firstName": "Brian"}}}
	_, err := svc.Find(ctx, "People", query)
	require.NoError(t, err)

	modID := 5
	fields := models.Payload{"fieldData": map[string]any{"firstName": "Joe"}}
	code, err := svc.Edit(ctx, "People", "12", fields, &modID)
	require.NoError(t, err)
	assert.Equal(t, "0", code)

	code, err = svc.Delete(ctx, "People", "12")
	require.NoError(t, err)
	assert.Equal(t, "0", code)

	calls := fc.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, call{op: client.OpFindRecords, token: "token-1", layout: "People", payload: query}, calls[0])
	assert.Equal(t, call{op: client.OpEditRecord, token: "token-1", layout: "People", id: "12", payload: fields, modID: &modID}, calls[1])
	assert.Equal(t, call{op: client.OpDeleteRecord, token: "token-1", layout: "People", id: "12"}, calls[2])
}
