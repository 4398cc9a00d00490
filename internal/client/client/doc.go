// Package client contains the transport-level building blocks of fmdata.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the
//     FileMaker Data API: CreateSession/DeleteSession and the record
//     operations ListRecords, FindRecords, GetRecord, EditRecord and
//     DeleteRecord.
//  2. A concrete REST implementation (see HTTPClient) that builds requests,
//     attaches basic or bearer authorization, bounds each call with a
//     timeout and decodes the {response, messages} envelope.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the SQLite session store, applying embedded goose migrations.
//
// # Error Handling
//
// Every failure matches exactly one kind with errors.Is: ErrNetwork,
// ErrMalformedResponse, ErrAPI, ErrNotFound, ErrConfigMissing or
// ErrInvalidRequest. Envelope failures also carry an *APIError with the
// server's code and message; ToRichError turns any of them into a go-errors
// value for presentation.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call takes a context and
// issues exactly one HTTP request; retries are left to the caller.
package client
