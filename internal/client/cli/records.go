package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

const defaultListLimit = 100

// usageError is printed as "Usage: ...".
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// getMultiline is swapped in tests.
var getMultiline = GetMultiline

func (a *App) List(ctx context.Context, args string) error {
	layout, rest := cutField(args)
	if layout == "" {
		return usageError("list <layout> [limit]")
	}
	limit := defaultListLimit
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return usageError("list <layout> [limit]")
		}
		limit = n
	}

	page, err := a.records().List(ctx, layout, limit)
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) Find(ctx context.Context, args string) error {
	layout, rest := cutField(args)
	if layout == "" {
		return usageError("find <layout> [json]")
	}
	payload, err := a.payload(rest, "Enter find request JSON")
	if err != nil {
		return err
	}

	page, err := a.records().Find(ctx, layout, payload)
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) Get(ctx context.Context, args string) error {
	layout, id, ok := layoutAndID(args)
	if !ok {
		return usageError("get <layout> <id>")
	}
	rec, err := a.records().Get(ctx, layout, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, rec.String())
	return nil
}

func (a *App) Edit(ctx context.Context, args string) error {
	const usage = usageError("edit <layout> <id> [mod=<n>] [json]")

	layout, rest := cutField(args)
	id, rest := cutField(rest)
	if layout == "" || id == "" {
		return usage
	}

	var modID *int
	if strings.HasPrefix(rest, "mod=") {
		var field string
		field, rest = cutField(rest)
		n, err := strconv.Atoi(strings.TrimPrefix(field, "mod="))
		if err != nil {
			return usage
		}
		modID = &n
	}

	payload, err := a.payload(rest, "Enter edit request JSON")
	if err != nil {
		return err
	}

	code, err := a.records().Edit(ctx, layout, id, payload, modID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Record %s updated (code %s)\n", id, code)
	return nil
}

func (a *App) Delete(ctx context.Context, args string) error {
	layout, id, ok := layoutAndID(args)
	if !ok {
		return usageError("delete <layout> <id>")
	}
	code, err := a.records().Delete(ctx, layout, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Record %s deleted (code %s)\n", id, code)
	return nil
}

// payload parses inline JSON, or prompts for it when inline is empty.
// Numbers are kept as json.Number so they reach the server unchanged.
func (a *App) payload(inline, prompt string) (models.Payload, error) {
	if inline == "" {
		text, err := getMultiline(a.reader, prompt, a.out)
		if err != nil {
			return nil, err
		}
		inline = text
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(inline)))
	dec.UseNumber()
	var p models.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, &client.Error{Op: "parse payload", Kind: client.ErrInvalidRequest, Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, &client.Error{Op: "parse payload", Kind: client.ErrInvalidRequest, Err: fmt.Errorf("unexpected text after JSON object")}
	}
	if p == nil {
		return nil, &client.Error{Op: "parse payload", Kind: client.ErrInvalidRequest, Err: fmt.Errorf("payload must be a JSON object")}
	}
	return p, nil
}

func (a *App) printPage(page *client.RecordPage) {
	for _, rec := range page.Records {
		fmt.Fprintln(a.out, rec.String())
	}
	if info := page.DataInfo; info != nil {
		fmt.Fprintf(a.out, "%d of %d found records (%d total in %s)\n",
			info.ReturnedCount, info.FoundCount, info.TotalRecordCount, info.Table)
		return
	}
	fmt.Fprintf(a.out, "%d records\n", len(page.Records))
}

func layoutAndID(args string) (layout, id string, ok bool) {
	layout, rest := cutField(args)
	id, rest = cutField(rest)
	return layout, id, layout != "" && id != "" && rest == ""
}
