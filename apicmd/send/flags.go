package send

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Parse handles "apicmd send" arguments and executes the send.
func Parse(args []string) error {
	fs := pflag.NewFlagSet("send", pflag.ContinueOnError)
	fs.SetInterspersed(true)

	opts := &options{}
	fs.StringVar(&opts.sessionKey, "session", "", "send a specific session instead of the active one")
	fs.StringVarP(&opts.method, "method", "X", "", "override HTTP method")
	fs.StringArrayVarP(&opts.headers, "header", "H", nil, "set header in 'Name: Value' form (repeatable)")
	fs.StringArrayVar(&opts.queries, "query", nil, "add query parameter as key=value (repeatable)")
	fs.StringArrayVar(&opts.cookies, "cookie", nil, "add request cookie as name=value (repeatable)")
	fs.StringVar(&opts.jsonBody, "json", "", "JSON request body")
	fs.StringVar(&opts.textBody, "text", "", "plain text request body")
	fs.StringVar(&opts.basic, "basic", "", "HTTP Basic credentials as user:password")
	fs.StringVar(&opts.bearer, "bearer", "", "Bearer token")
	fs.StringVar(&opts.awsAccessKey, "aws-access-key", "", "AWS access key ID (enables SigV4 signing)")
	fs.StringVar(&opts.awsSecretKey, "aws-secret-key", "", "AWS secret access key")
	fs.StringVar(&opts.awsRegion, "aws-region", "", "AWS region for signing")
	fs.StringVar(&opts.awsService, "aws-service", "", "AWS service name for signing")
	fs.BoolVar(&opts.promptSecret, "prompt-secret", false, "prompt for the secret credential without echo")
	fs.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default from config)")
	fs.BoolVar(&opts.noSave, "no-save", false, "do not persist the sent state back to the session")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "print response headers and cookies")

	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd send [url] [options]

Send the active session's request, optionally overriding parts of it for
this send. Overrides are saved back into the session unless --no-save.

Arguments:
  [url]       Override the request URL

Options:
  --session <key>            Send a specific session instead of the active one
  -X, --method <method>      Override HTTP method (GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS)
  -H, --header "Name: Value" Set a header (repeatable)
  --query "key=value"        Add a query parameter (repeatable)
  --cookie "name=value"      Add a request cookie (repeatable)
  --json <body>              Use a JSON body
  --text <body>              Use a plain text body

Authentication (choose one):
  --basic user:password      HTTP Basic
  --bearer <token>           Bearer token
  --aws-access-key <id>      AWS Signature V4; combine with --aws-secret-key,
                             --aws-region and --aws-service
  --prompt-secret            Prompt for the secret part (password, token, or
                             AWS secret key) without echoing it

Other options:
  --timeout <dur>            Request timeout (default: 15s)
  --no-save                  Do not persist overrides back to the session
  -v, --verbose              Print response headers and cookies

Examples:
  apicmd send
  apicmd send https://api.example.com/users -X GET
  apicmd send --json '{"id": 101}' -H "X-Api-Key: secret"
  apicmd send --bearer "" --prompt-secret
  apicmd send --aws-access-key AKID... --prompt-secret --aws-region us-east-1 --aws-service execute-api
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	if fs.NArg() == 1 {
		opts.url = fs.Arg(0)
	}
	// Distinguish "flag given with empty value" from "flag absent" for the
	// flags where an empty value is meaningful alongside --prompt-secret.
	opts.jsonSet = fs.Changed("json")
	opts.textSet = fs.Changed("text")
	opts.basicSet = fs.Changed("basic")
	opts.bearerSet = fs.Changed("bearer")

	return run(opts)
}

type options struct {
	url        string
	sessionKey string
	method     string
	headers    []string
	queries    []string
	cookies    []string
	jsonBody   string
	jsonSet    bool
	textBody   string
	textSet    bool

	basic        string
	basicSet     bool
	bearer       string
	bearerSet    bool
	awsAccessKey string
	awsSecretKey string
	awsRegion    string
	awsService   string
	promptSecret bool

	timeout time.Duration
	noSave  bool
	verbose bool
}
