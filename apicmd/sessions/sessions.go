// Package sessions implements the "apicmd session" command group.
package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gcnwokike/API-Commander/apicmd/app"
	"github.com/gcnwokike/API-Commander/apicmd/cli"
	"github.com/gcnwokike/API-Commander/apicmd/cliutil"
	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/session"
)

func list() error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	sessions := workspace.Sessions.ListAll()
	if len(sessions) == 0 {
		cliutil.NoResults(os.Stdout, "No sessions yet.")
		cliutil.HintCommand(os.Stdout, "Create one with", "apicmd session new [url]")
		return nil
	}

	active := workspace.Sessions.ActiveKey()
	now := time.Now()

	t := cliutil.NewTable(os.Stdout)
	t.AppendHeader(table.Row{"", "Key", "Name", "Modified"})
	for _, sess := range sessions {
		marker := ""
		if sess.Key == active {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, cliutil.ID(sess.Key), sess.Name, session.FormatTimeAgo(sess.Timestamp, now)})
	}
	t.Render()
	cliutil.Summary(os.Stdout, len(sessions), "session", "sessions")
	return nil
}

func create(url, method string) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	state := request.DefaultSpec()
	if url != "" {
		state.URL = url
	}
	if method != "" {
		state.Method = request.Method(strings.ToUpper(method))
		if !state.Method.Valid() {
			return fmt.Errorf("unsupported HTTP method: %s", method)
		}
	}

	sess, err := workspace.Sessions.Create(state, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Created session %s (%s)\n", cliutil.ID(sess.Key), sess.Name)
	return nil
}

func use(key string) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	sess, err := workspace.Sessions.Switch(key)
	if err != nil {
		return describeMissing(workspace, key, err)
	}
	fmt.Printf("Active session is now %s (%s)\n", cliutil.ID(sess.Key), sess.Name)
	return nil
}

func show(key string, asJSON bool) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	sess, err := lookup(workspace, key)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(sess.State, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	state := sess.State
	fmt.Printf("%s %s\n", cliutil.Bold(sess.Name), cliutil.ID(sess.Key))
	fmt.Println()
	fmt.Printf("Method:  %s\n", state.Method)
	url := state.URL
	if url == "" {
		url = "(not set)"
	}
	fmt.Printf("URL:     %s\n", url)
	fmt.Printf("Auth:    %s\n", state.Auth.Type)
	fmt.Printf("Body:    %s\n", state.Body.Type)

	printEntryTable("Query parameters", state.QueryParams.Active())
	if state.RawHeadersMode {
		fmt.Println("\nHeaders (raw):")
		for _, line := range strings.Split(state.RawHeadersText, "\n") {
			fmt.Printf("  %s\n", line)
		}
	} else {
		printEntryTable("Headers", state.Headers.Active())
	}
	printEntryTable("Cookies", state.Cookies.Active())
	return nil
}

func printEntryTable(title string, entries []request.KeyValueEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	t := cliutil.NewTable(os.Stdout)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Key, e.Value})
	}
	t.Render()
}

func remove(key string) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	if err := workspace.Sessions.Delete(key); err != nil {
		return describeMissing(workspace, key, err)
	}
	fmt.Printf("Deleted session %s\n", cliutil.ID(key))
	if active := workspace.Sessions.ActiveKey(); active != "" {
		fmt.Printf("Active session is now %s\n", cliutil.ID(active))
	}
	return nil
}

func export(key, out string) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	sess, err := lookup(workspace, key)
	if err != nil {
		return err
	}

	data, err := request.Export(sess.State)
	if err != nil {
		return err
	}
	if out == "" {
		out = fmt.Sprintf("apicommander-session-%d.json", time.Now().UnixMilli())
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported session %s to %s\n", cliutil.ID(sess.Key), out)
	return nil
}

func importFile(path string) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	state, err := request.Import(data)
	if err != nil {
		return err
	}

	sess, err := workspace.Sessions.Create(state, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Imported session %s (%s)\n", cliutil.ID(sess.Key), sess.Name)
	return nil
}

// lookup resolves a session by key, defaulting to the active session.
func lookup(workspace *app.App, key string) (*session.Session, error) {
	if key == "" {
		sess, ok := workspace.Sessions.Active()
		if !ok {
			return nil, fmt.Errorf("no active session; create one with \"apicmd session new\"")
		}
		return sess, nil
	}
	sess, ok := workspace.Sessions.Get(key)
	if !ok {
		return nil, describeMissing(workspace, key, session.ErrSessionNotFound)
	}
	return sess, nil
}

// describeMissing augments a not-found error with a closest-key suggestion.
func describeMissing(workspace *app.App, key string, err error) error {
	keys := make([]string, 0)
	for _, sess := range workspace.Sessions.ListAll() {
		keys = append(keys, sess.Key)
	}
	if closest := cli.Closest(key, keys); closest != "" {
		return fmt.Errorf("%w: %s (did you mean %s?)", err, key, closest)
	}
	return fmt.Errorf("%w: %s", err, key)
}
