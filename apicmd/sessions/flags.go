package sessions

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gcnwokike/API-Commander/apicmd/cli"
)

var sessionSubcommands = []string{"list", "new", "use", "show", "delete", "export", "import", "help"}

// Parse handles "apicmd session" subcommands.
func Parse(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("subcommand required")
	}

	switch args[0] {
	case "list":
		return parseList(args[1:])
	case "new":
		return parseNew(args[1:])
	case "use":
		return parseUse(args[1:])
	case "show":
		return parseShow(args[1:])
	case "delete":
		return parseDelete(args[1:])
	case "export":
		return parseExport(args[1:])
	case "import":
		return parseImport(args[1:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		return cli.UnknownSubcommandError("session", args[0], sessionSubcommands)
	}
}

func printUsage() {
	_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd session <command> [options]

Manage saved request sessions. Each session holds one complete request;
exactly one session is active at a time and is what "apicmd send" sends.

Commands:
  list       List sessions, most recently modified first
  new        Create a session and make it active
  use        Switch the active session
  show       Show a session's request state
  delete     Delete a session
  export     Export a session's request to a JSON file
  import     Import a request from an exported JSON file into a new session

---

session list

  Output: table of key, name, and age, with the active session marked.

---

session new [url] [options]

  Create a session, optionally seeding the request URL and method.

  Options:
    --method <method>   HTTP method for the new session (default: POST)

---

session use <key>

  Make the named session active.

---

session show [key] [options]

  Show the session's request state (active session when key omitted).

  Options:
    --json    print the raw request state as JSON

---

session delete <key>

  Delete a session. Deleting the active session activates the most
  recently modified remaining one.

---

session export [key] [options]

  Write the session's request to a JSON file that "session import" and
  other installations understand.

  Options:
    --out <path>    output path (default: apicommander-session-<timestamp>.json)

---

session import <file>

  Create a new active session from an exported file.

Examples:
  apicmd session new https://api.example.com/users --method GET
  apicmd session list
  apicmd session use session_1756464000000_a1b2c3d4
  apicmd session export --out request.json
`)
}

func parseList(args []string) error {
	fs := pflag.NewFlagSet("session list", pflag.ContinueOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, "Usage: apicmd session list\n\nList sessions, most recently modified first.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	return list()
}

func parseNew(args []string) error {
	fs := pflag.NewFlagSet("session new", pflag.ContinueOnError)
	var method string
	fs.StringVar(&method, "method", "", "HTTP method for the new session")
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd session new [url] [options]

Create a session and make it active.

Options:
  --method <method>   HTTP method for the new session (default: POST)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := ""
	if fs.NArg() > 0 {
		url = fs.Arg(0)
	}
	return create(url, method)
}

func parseUse(args []string) error {
	fs := pflag.NewFlagSet("session use", pflag.ContinueOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, "Usage: apicmd session use <key>\n\nMake the named session active.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("session key required")
	}
	return use(fs.Arg(0))
}

func parseShow(args []string) error {
	fs := pflag.NewFlagSet("session show", pflag.ContinueOnError)
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "print the raw request state as JSON")
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd session show [key] [options]

Show the session's request state (active session when key omitted).

Options:
  --json    print the raw request state as JSON
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	key := ""
	if fs.NArg() > 0 {
		key = fs.Arg(0)
	}
	return show(key, asJSON)
}

func parseDelete(args []string) error {
	fs := pflag.NewFlagSet("session delete", pflag.ContinueOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, "Usage: apicmd session delete <key>\n\nDelete a session.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("session key required")
	}
	return remove(fs.Arg(0))
}

func parseExport(args []string) error {
	fs := pflag.NewFlagSet("session export", pflag.ContinueOnError)
	var out string
	fs.StringVar(&out, "out", "", "output path (default: apicommander-session-<timestamp>.json)")
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd session export [key] [options]

Write the session's request to a JSON file.

Options:
  --out <path>    output path (default: apicommander-session-<timestamp>.json)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	key := ""
	if fs.NArg() > 0 {
		key = fs.Arg(0)
	}
	return export(key, out)
}

func parseImport(args []string) error {
	fs := pflag.NewFlagSet("session import", pflag.ContinueOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, "Usage: apicmd session import <file>\n\nCreate a new active session from an exported JSON file.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("file path required")
	}
	return importFile(fs.Arg(0))
}
