// Package send implements the "apicmd send" command: it resolves the
// request state, applies command-line overrides, and transmits it.
package send

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/gcnwokike/API-Commander/apicmd/app"
	"github.com/gcnwokike/API-Commander/apicmd/cli"
	"github.com/gcnwokike/API-Commander/apicmd/cliutil"
	"github.com/gcnwokike/API-Commander/apicmd/httpinfo"
	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/session"
	"github.com/gcnwokike/API-Commander/apicmd/transport"
)

func run(opts *options) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	state, fromActive, err := resolveState(workspace, opts)
	if err != nil {
		return err
	}
	if err := applyOverrides(state, opts); err != nil {
		return err
	}
	if err := state.Validate(); err != nil {
		return err
	}

	now := time.Now()
	prepared, err := request.Build(state, now)
	if err != nil {
		return err
	}

	timeout := opts.timeout
	if timeout <= 0 {
		timeout = workspace.Config.SendTimeout()
	}
	// Ctrl-C cancels the in-flight request rather than killing the process,
	// so the cancellation is reported and the session state stays unsaved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sender := &transport.Sender{Timeout: timeout}
	resp, err := sender.Send(ctx, prepared)
	if err != nil {
		return describeSendError(err, timeout)
	}

	printResponse(resp, opts.verbose)

	// Overrides become the session's new state, mirroring how edits in the
	// request editor persist. Nothing is written when no session is active.
	if fromActive && !opts.noSave {
		if err := workspace.Sessions.SaveActive(state, time.Now()); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// describeSendError maps transport failures onto user-facing messages,
// keeping cancellation and timeout distinguishable.
func describeSendError(err error, timeout time.Duration) error {
	switch {
	case errors.Is(err, transport.ErrCancelled):
		return errors.New("request cancelled")
	case errors.Is(err, transport.ErrTimeout):
		return fmt.Errorf("request timed out after %s", timeout)
	}
	return err
}

// resolveState picks the request state to send: a named session, the active
// session, or a fresh default when the store is empty. The second return
// reports whether the state belongs to the active session.
func resolveState(workspace *app.App, opts *options) (*request.Spec, bool, error) {
	if opts.sessionKey != "" {
		sess, ok := workspace.Sessions.Get(opts.sessionKey)
		if !ok {
			return nil, false, suggestSession(workspace, opts.sessionKey)
		}
		return sess.State, opts.sessionKey == workspace.Sessions.ActiveKey(), nil
	}
	if sess, ok := workspace.Sessions.Active(); ok {
		return sess.State, true, nil
	}
	return request.DefaultSpec(), false, nil
}

func suggestSession(workspace *app.App, key string) error {
	keys := make([]string, 0)
	for _, sess := range workspace.Sessions.ListAll() {
		keys = append(keys, sess.Key)
	}
	if closest := cli.Closest(key, keys); closest != "" {
		return fmt.Errorf("session %s not found, did you mean %s?", key, closest)
	}
	return session.ErrSessionNotFound
}

// applyOverrides folds the command-line flags into the request state.
func applyOverrides(state *request.Spec, opts *options) error {
	if opts.url != "" {
		state.URL = opts.url
	}
	if opts.method != "" {
		state.Method = request.Method(strings.ToUpper(opts.method))
	}

	for _, raw := range opts.headers {
		name, value, found := strings.Cut(raw, ":")
		if !found || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q: expected 'Name: Value'", raw)
		}
		setEntry(&state.Headers, strings.TrimSpace(name), strings.TrimSpace(value))
	}
	for _, raw := range opts.queries {
		key, value, found := strings.Cut(raw, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid query parameter %q: expected key=value", raw)
		}
		setEntry(&state.QueryParams, key, value)
	}
	for _, raw := range opts.cookies {
		name, value, found := strings.Cut(raw, "=")
		if !found || name == "" {
			return fmt.Errorf("invalid cookie %q: expected name=value", raw)
		}
		setEntry(&state.Cookies, name, value)
	}

	if opts.jsonSet {
		state.Body.Type = request.BodyJSON
		state.Body.JSONContent = opts.jsonBody
	}
	if opts.textSet {
		if opts.jsonSet {
			return errors.New("--json and --text are mutually exclusive")
		}
		state.Body.Type = request.BodyText
		state.Body.TextContent = opts.textBody
	}

	return applyAuthOverrides(state, opts)
}

// setEntry updates the first entry matching key (case-insensitive) or
// appends a new enabled one, restoring the sentinel afterwards.
func setEntry(list *request.KVList, key, value string) {
	for i := range *list {
		if (*list)[i].Key != "" && strings.EqualFold((*list)[i].Key, key) {
			(*list)[i].Value = value
			(*list)[i].Enabled = true
			return
		}
	}
	entry := request.NewEntry()
	entry.Key = key
	entry.Value = value
	*list = append(*list, entry)
	list.Normalize()
}

func applyAuthOverrides(state *request.Spec, opts *options) error {
	selected := 0
	for _, set := range []bool{opts.basicSet, opts.bearerSet, opts.awsAccessKey != ""} {
		if set {
			selected++
		}
	}
	if selected > 1 {
		return errors.New("--basic, --bearer and --aws-access-key are mutually exclusive")
	}

	switch {
	case opts.basicSet:
		user, pass, _ := strings.Cut(opts.basic, ":")
		state.Auth.Type = request.AuthBasic
		state.Auth.Basic = request.BasicAuth{Username: user, Password: pass}
		if opts.promptSecret {
			secret, err := readSecret("Password: ")
			if err != nil {
				return err
			}
			state.Auth.Basic.Password = secret
		}
	case opts.bearerSet:
		state.Auth.Type = request.AuthBearer
		state.Auth.Bearer.Token = opts.bearer
		if opts.promptSecret {
			secret, err := readSecret("Token: ")
			if err != nil {
				return err
			}
			state.Auth.Bearer.Token = secret
		}
	case opts.awsAccessKey != "":
		state.Auth.Type = request.AuthAwsV4
		state.Auth.Aws = request.AwsAuth{
			AccessKeyID:     opts.awsAccessKey,
			SecretAccessKey: opts.awsSecretKey,
			Region:          opts.awsRegion,
			Service:         opts.awsService,
		}
		if opts.promptSecret {
			secret, err := readSecret("AWS secret access key: ")
			if err != nil {
				return err
			}
			state.Auth.Aws.SecretAccessKey = secret
		}
	case opts.promptSecret:
		return errors.New("--prompt-secret requires --basic, --bearer, or --aws-access-key")
	}
	return nil
}

// readSecret reads a credential from the terminal without echoing it.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}

func printResponse(resp *transport.Response, verbose bool) {
	status := cliutil.Bold(resp.StatusLine())
	switch httpinfo.StatusClass(resp.Status) {
	case httpinfo.ClassSuccess:
		status = text.FgGreen.Sprint(status)
	case httpinfo.ClassWarning:
		status = text.FgYellow.Sprint(status)
	case httpinfo.ClassError:
		status = text.FgRed.Sprint(status)
	}
	fmt.Printf("%s  %s  %s  %s\n", status, cliutil.FormatBytes(resp.Size), resp.Duration.Round(time.Millisecond), resp.Proto)

	if verbose {
		fmt.Println()
		t := cliutil.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"Header", "Value"})
		for _, name := range sortedHeaderNames(resp) {
			for _, value := range resp.Headers[name] {
				t.AppendRow(table.Row{name, value})
			}
		}
		t.Render()

		if len(resp.Cookies) > 0 {
			fmt.Println()
			t := cliutil.NewTable(os.Stdout)
			t.AppendHeader(table.Row{"Cookie", "Value"})
			for _, cookie := range resp.Cookies {
				t.AppendRow(table.Row{cookie.Name, cookie.Value})
			}
			t.Render()
		}
	}

	if len(resp.Body) > 0 {
		fmt.Println()
		fmt.Println(renderBody(resp))
	}
}

// renderBody pretty-prints JSON payloads and passes everything else through.
func renderBody(resp *transport.Response) string {
	body := string(resp.Body)
	if strings.Contains(resp.Headers.Get("Content-Type"), "json") {
		if pretty, err := request.PrettifyJSON(body); err == nil {
			return pretty
		}
	}
	return body
}

func sortedHeaderNames(resp *transport.Response) []string {
	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
