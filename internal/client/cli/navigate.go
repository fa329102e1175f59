package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
)

func (a *App) Open(ctx context.Context, target string) error {
	if _, err := a.nav.Navigate(ctx, target); err != nil {
		return err
	}
	return a.Where(ctx)
}

func (a *App) Where(ctx context.Context) error {
	m := a.nav.CurrentMatch()
	title := m.Route.Title
	if title == "" {
		title = m.Route.Name
	}
	printlnFn(fmt.Sprintf("%s (%s)", a.nav.Current(), title))
	return nil
}

// Call sends args = [METHOD, path, json...] through the dispatcher and
// prints the envelope data.
func (a *App) Call(ctx context.Context, args []string) error {
	method := strings.ToUpper(args[0])
	u, err := url.Parse(args[1])
	if err != nil {
		return fmt.Errorf("bad path: %w", err)
	}

	req := client.Request{Method: method, Path: u.EscapedPath(), Query: u.Query()}
	if body := strings.Join(args[2:], " "); body != "" {
		if !json.Valid([]byte(body)) {
			return fmt.Errorf("body is not valid JSON")
		}
		req.Body = json.RawMessage(body)
	}

	data, err := a.sender.Send(ctx, req)
	if err != nil {
		return err
	}
	printlnFn(formatJSON(data))
	return nil
}

func formatJSON(data json.RawMessage) string {
	if len(data) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
