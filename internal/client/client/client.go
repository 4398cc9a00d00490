package client

import (
	"context"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

// RecordPage is a list or find result: the returned records plus the
// server's dataInfo block when it sent one.
type RecordPage struct {
	Records  []models.Record
	DataInfo *models.DataInfo
	Code     string
}

// Client is the transport contract for the Data API. Record operations take
// a bearer token obtained beforehand; they never refresh it themselves.
type Client interface {
	CreateSession(ctx context.Context, credential string) (token string, code string, err error)
	DeleteSession(ctx context.Context, token string) (code string, err error)

	ListRecords(ctx context.Context, token, layout string, limit int) (*RecordPage, error)
	FindRecords(ctx context.Context, token, layout string, payload models.Payload) (*RecordPage, error)
	GetRecord(ctx context.Context, token, layout, id string) (models.Record, string, error)
	EditRecord(ctx context.Context, token, layout, id string, payload models.Payload, modID *int) (code string, err error)
	DeleteRecord(ctx context.Context, token, layout, id string) (code string, err error)
}
