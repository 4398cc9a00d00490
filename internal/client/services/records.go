package services

import (
	"context"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/logging"
)

// RecordService runs record operations with a token from the session
// manager, refreshing it first when none is active.
type RecordService interface {
	List(ctx context.Context, layout string, limit int) (*client.RecordPage, error)
	Find(ctx context.Context, layout string, payload models.Payload) (*client.RecordPage, error)
	Get(ctx context.Context, layout, id string) (models.Record, error)
	Edit(ctx context.Context, layout, id string, payload models.Payload, modID *int) (string, error)
	Delete(ctx context.Context, layout, id string) (string, error)
}

type recordService struct {
	client     client.Client
	sessions   SessionManager
	credential string
	logger     logging.Logger
}

// NewRecordService binds c and sessions to credential. A nil logger
// discards output.
func NewRecordService(c client.Client, sessions SessionManager, credential string, logger logging.Logger) RecordService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &recordService{client: c, sessions: sessions, credential: credential, logger: logger}
}

// withToken calls fn with the active token, refreshing first when none is
// active. A token the server rejects (code 952) is returned as an
// *client.APIError and not retried.
func (s *recordService) withToken(ctx context.Context, fn func(token string) error) error {
	token, err := s.sessions.Token(ctx, s.credential)
	if err != nil {
		return err
	}
	if err := fn(token); err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.InvalidToken() {
			s.logger.Warn(ctx, "token rejected by server", "code", apiErr.Code)
		}
		return err
	}
	return nil
}

func (s *recordService) List(ctx context.Context, layout string, limit int) (*client.RecordPage, error) {
	var page *client.RecordPage
	err := s.withToken(ctx, func(token string) (err error) {
		page, err = s.client.ListRecords(ctx, token, layout, limit)
		return err
	})
	return page, err
}

func (s *recordService) Find(ctx context.Context, layout string, payload models.Payload) (*client.RecordPage, error) {
	var page *client.RecordPage
	err := s.withToken(ctx, func(token string) (err error) {
		page, err = s.client.FindRecords(ctx, token, layout, payload)
		return err
	})
	return page, err
}

func (s *recordService) Get(ctx context.Context, layout, id string) (models.Record, error) {
	var rec models.Record
	err := s.withToken(ctx, func(token string) (err error) {
		rec, _, err = s.client.GetRecord(ctx, token, layout, id)
		return err
	})
	return rec, err
}

func (s *recordService) Edit(ctx context.Context, layout, id string, payload models.Payload, modID *int) (string, error) {
	var code string
	err := s.withToken(ctx, func(token string) (err error) {
		code, err = s.client.EditRecord(ctx, token, layout, id, payload, modID)
		return err
	})
	return code, err
}

func (s *recordService) Delete(ctx context.Context, layout, id string) (string, error) {
	var code string
	err := s.withToken(ctx, func(token string) (err error) {
		code, err = s.client.DeleteRecord(ctx, token, layout, id)
		return err
	})
	return code, err
}
