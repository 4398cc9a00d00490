package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/fmdata/internal/client/session"
)

const testCredential = "dGVzdDp0ZXN0"

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type call struct {
	op      string
	token   string
	layout  string
	id      string
	limit   int
	payload models.Payload
	modID   *int
}

// fakeClient implements client.Client. CreateSession hands out token-1,
// token-2, ...; tokens listed in rejected fail record calls with code 952.
type fakeClient struct {
	mu sync.Mutex

	creates   int
	createErr error
	deleted   []string
	deleteErr error

	rejected map[string]bool
	calls    []call

	page   *client.RecordPage
	record models.Record
	err    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{rejected: map[string]bool{}}
}

func invalidTokenErr(op string) error {
	return &client.Error{Op: op, Kind: client.ErrAPI, Err: &client.APIError{
		Code: "952", Message: "Invalid FileMaker Data API token (*)", HTTPStatus: 401,
	}}
}

func (f *fakeClient) CreateSession(_ context.Context, credential string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if credential != testCredential {
		return "", "212", &client.Error{Op: client.OpCreateSession, Kind: client.ErrAPI, Err: &client.APIError{Code: "212", Message: "Invalid user account and/or password; please try again"}}
	}
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.creates++
	return fmt.Sprintf("token-%d", f.creates), "0", nil
}

func (f *fakeClient) DeleteSession(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, token)
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	return "0", nil
}

func (f *fakeClient) recordCall(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.rejected[c.token] {
		return invalidTokenErr(c.op)
	}
	return f.err
}

func (f *fakeClient) ListRecords(_ context.Context, token, layout string, limit int) (*client.RecordPage, error) {
	if err := f.recordCall(call{op: client.OpListRecords, token: token, layout: layout, limit: limit}); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeClient) FindRecords(_ context.Context, token, layout string, payload models.Payload) (*client.RecordPage, error) {
	if err := f.recordCall(call{op: client.OpFindRecords, token: token, layout: layout, payload: payload}); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeClient) GetRecord(_ context.Context, token, layout, id string) (models.Record, string, error) {
	if err := f.recordCall(call{op: client.OpGetRecord, token: token, layout: layout, id: id}); err != nil {
		return nil, "", err
	}
	return f.record, "0", nil
}

func (f *fakeClient) EditRecord(_ context.Context, token, layout, id string, payload models.Payload, modID *int) (string, error) {
	if err := f.recordCall(call{op: client.OpEditRecord, token: token, layout: layout, id: id, payload: payload, modID: modID}); err != nil {
		return "", err
	}
	return "0", nil
}

func (f *fakeClient) DeleteRecord(_ context.Context, token, layout, id string) (string, error) {
	if err := f.recordCall(call{op: client.OpDeleteRecord, token: token, layout: layout, id: id}); err != nil {
		return "", err
	}
	return "0", nil
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeClient) Creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

var _ client.Client = (*fakeClient)(nil)

func newTestManager(t *testing.T, fc *fakeClient) (*session.Manager, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	return session.NewManager(fc, sessions.NewMemoryStore(), session.WithClock(clock)), clock
}
