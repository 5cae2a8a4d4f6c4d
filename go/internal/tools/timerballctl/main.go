package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/mcdev12/timerball/go/internal/session"
)

const usage = `usage: timerballctl [-addr URL] <command> [args]

commands:
  create                      create a session
  list                        list sessions
  get <session-id>            show a session and its round
  start <session-id> [seed]   start the round
  restart <session-id> [seed] restart an ended round
  pause <session-id>          pause the round
  resume <session-id>         resume the round
  delete <session-id>         stop and drop a session
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, http.DefaultClient); err != nil {
		fmt.Fprintf(os.Stderr, "timerballctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, httpClient connect.HTTPClient) error {
	fs := flag.NewFlagSet("timerballctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", envOr("TIMERBALL_ADDR", "http://localhost:8080"), "server base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := session.NewSessionServiceClient(httpClient, *addr)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var (
		msg any
		err error
	)
	switch cmd {
	case "create":
		var resp *connect.Response[session.CreateSessionResponse]
		resp, err = client.CreateSession(ctx, connect.NewRequest(&session.CreateSessionRequest{}))
		if err == nil {
			msg = resp.Msg
		}

	case "list":
		var resp *connect.Response[session.ListSessionsResponse]
		resp, err = client.ListSessions(ctx, connect.NewRequest(&session.ListSessionsRequest{}))
		if err == nil {
			msg = resp.Msg
		}

	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("get takes a session id\n%s", usage)
		}
		var resp *connect.Response[session.GetSessionResponse]
		resp, err = client.GetSession(ctx, connect.NewRequest(&session.GetSessionRequest{SessionID: rest[0]}))
		if err == nil {
			msg = resp.Msg
		}

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("delete takes a session id\n%s", usage)
		}
		var resp *connect.Response[session.DeleteSessionResponse]
		resp, err = client.DeleteSession(ctx, connect.NewRequest(&session.DeleteSessionRequest{SessionID: rest[0]}))
		if err == nil {
			msg = resp.Msg
		}

	case "start", "restart", "pause", "resume":
		req, perr := roundRequest(cmd, rest)
		if perr != nil {
			return perr
		}
		call := map[string]func(context.Context, *connect.Request[session.RoundRequest]) (*connect.Response[session.RoundResponse], error){
			"start":   client.StartRound,
			"restart": client.RestartRound,
			"pause":   client.PauseRound,
			"resume":  client.ResumeRound,
		}[cmd]
		var resp *connect.Response[session.RoundResponse]
		resp, err = call(ctx, connect.NewRequest(req))
		if err == nil {
			msg = resp.Msg
		}

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}

func roundRequest(cmd string, args []string) (*session.RoundRequest, error) {
	withSeed := cmd == "start" || cmd == "restart"
	if len(args) == 0 || len(args) > 2 || (len(args) == 2 && !withSeed) {
		return nil, fmt.Errorf("bad arguments for %s\n%s", cmd, usage)
	}

	req := &session.RoundRequest{SessionID: args[0]}
	if len(args) == 2 {
		seed, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", args[1], err)
		}
		req.Seed = &seed
	}
	return req, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
