package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gcnwokike/API-Commander/apicmd/app"
)

// Parse handles "apicmd serve" arguments and runs the MCP server until
// interrupted.
func Parse(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	var port int
	fs.IntVar(&port, "port", 0, "listen port (default from config)")

	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: apicmd serve [options]

Run the MCP server, exposing request sending and session management as
tools. Serves streamable HTTP on /mcp and SSE on /sse, bound to localhost.

Options:
  --port <port>    listen port (default: 9321, configurable)

Tools:
  request_send     send the active session's request, with overrides
  session_list     list sessions
  session_get      get a session's request state
  session_create   create a session and make it active
  session_switch   switch the active session
  session_delete   delete a session
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return serve(port)
}

func serve(port int) error {
	workspace, err := app.Open()
	if err != nil {
		return err
	}
	defer func() { _ = workspace.Close() }()

	if port <= 0 {
		port = workspace.Config.MCPPort
	}

	srv := NewServer(workspace.Config, workspace.Sessions)
	if err := srv.Start(port); err != nil {
		return err
	}
	fmt.Printf("MCP server listening on http://%s (/mcp and /sse)\n", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\nShutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Close(ctx)
}
