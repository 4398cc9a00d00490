// Package models holds the values exchanged with the Data API: records,
// their JSON values and the cached session.
package models

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Record is one element of a layout's data array. The core never
// interprets field semantics; the accessors only look up the keys the
// Data API always sends.
type Record map[string]Value

// Payload is a caller-built request body (find query or field update).
// It is passed through to the server as JSON without validation.
type Payload map[string]any

const (
	keyRecordID  = "recordId"
	keyModID     = "modId"
	keyFieldData = "fieldData"
)

// RecordID returns the server-side record id, if present.
func (r Record) RecordID() string {
	return r.scalar(keyRecordID)
}

// ModID returns the record's modification id, if present.
func (r Record) ModID() string {
	return r.scalar(keyModID)
}

// FieldData returns the record's field map, or nil when the record does not
// carry one.
func (r Record) FieldData() map[string]Value {
	v, ok := r[keyFieldData]
	if !ok {
		return nil
	}
	fields, _ := v.AsObject()
	return fields
}

func (r Record) scalar(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	switch v.Kind() {
	case KindString, KindNumber:
		return v.Text()
	default:
		return ""
	}
}

// String renders the record as "id (mod): field=value, ..." for display.
func (r Record) String() string {
	fields := r.FieldData()
	if fields == nil {
		fields = map[string]Value(r)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, fields[name].Text()))
	}

	head := r.RecordID()
	if mod := r.ModID(); mod != "" {
		head = fmt.Sprintf("%s (mod %s)", head, mod)
	}
	if head == "" {
		return strings.Join(parts, ", ")
	}
	return head + ": " + strings.Join(parts, ", ")
}

// DataInfo is the metadata block returned next to list and find results.
type DataInfo struct {
	Database         string `json:"database"`
	Layout           string `json:"layout"`
	Table            string `json:"table"`
	TotalRecordCount int    `json:"totalRecordCount"`
	FoundCount       int    `json:"foundCount"`
	ReturnedCount    int    `json:"returnedCount"`
}

// EncodeCredential builds the opaque basic credential from a username and
// password.
func EncodeCredential(username string, password []byte) string {
	raw := make([]byte, 0, len(username)+1+len(password))
	raw = append(raw, username...)
	raw = append(raw, ':')
	raw = append(raw, password...)
	enc := base64.StdEncoding.EncodeToString(raw)
	for i := range raw {
		raw[i] = 0
	}
	return enc
}
