// Command forumctl drives the forum client layer from a terminal.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/forumstartup/forum/frontend/internal/setup"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/config"
	"github.com/forumstartup/forum/shared/errors"
)

const cookieFile = "cookies.json"

var errUsage = stderrors.New("usage")

type command struct {
	usage string
	run   func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":          {"login [-u username] [-p password]", cmdLogin},
	"logout":         {"logout", cmdLogout},
	"me":             {"me", cmdMe},
	"register":       {"register -u username -p password -email e -first name -last name", cmdRegister},
	"posts":          {"posts [-page n] [-size n] [-sort field,dir] [-q text] [-author id] [-tag t] [-mine]", cmdPosts},
	"recent":         {"recent [-limit n]", cmdRecent},
	"post":           {"post -id n", cmdPost},
	"create-post":    {"create-post -title t -content c", cmdCreatePost},
	"like":           {"like -post n [-comment n]", cmdLike},
	"tags":           {"tags [-post n] [-add a,b] [-remove t]", cmdTags},
	"comments":       {"comments -post n [-page n] [-size n]", cmdComments},
	"comment":        {"comment -post n -text t [-reply-to n]", cmdComment},
	"users":          {"users [-page n] [-size n] [-username u] [-email e]", cmdUsers},
	"block":          {"block -id n", cmdModerate("block")},
	"unblock":        {"unblock -id n", cmdModerate("unblock")},
	"promote":        {"promote -id n", cmdModerate("promote")},
	"delete-user":    {"delete-user -id n", cmdDeleteUser},
	"delete-post":    {"delete-post -id n [-admin]", cmdDeletePost},
	"delete-comment": {"delete-comment -post n -id n [-yes]", cmdDeleteComment},
	"delete-account": {"delete-account [-yes]", cmdDeleteAccount},
	"profile":        {"profile", cmdProfile},
	"update-profile": {"update-profile [-first n] [-last n] [-email e] [-password p] [-avatar file]", cmdUpdateProfile},
	"watch":          {"watch [-interval d]", cmdWatch},
}

type cli struct {
	cfg  *config.Config
	deps *setup.Dependencies
	out  io.Writer
	err  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("forumctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFolder := fs.String("config_folder", "", "folder with public.yaml and private.yaml (default: built-in settings and FORUM_* env)")
	baseURL := fs.String("base-url", "", "backend root including /api")
	stateDir := fs.String("state-dir", "", "where the session cookies are kept")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		usage(stderr)
		return 2
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr)
		return 2
	}

	cfg := config.FromEnv()
	if *configFolder != "" {
		cfg = config.MustLoad(*configFolder)
	}
	if *baseURL != "" {
		cfg.Public.BaseURL = *baseURL
	}
	if *stateDir != "" {
		cfg.Public.StateDir = *stateDir
	}
	if name != "watch" {
		cfg.Public.SessionRefreshInterval = 0
	}

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer deps.Close()

	cookies := filepath.Join(cfg.Public.StateDir, cookieFile)
	if err := deps.API.LoadCookies(cookies); err != nil {
		fmt.Fprintln(stderr, "warning: ignoring saved session:", err)
	}

	c := &cli{cfg: cfg, deps: deps, out: stdout, err: stderr}
	runErr := cmd.run(c, ctx, fs.Args()[1:])

	if err := deps.API.SaveCookies(cookies); err != nil {
		fmt.Fprintln(stderr, "warning: session not saved:", err)
	}

	switch {
	case runErr == nil:
		return 0
	case stderrors.Is(runErr, errUsage), stderrors.Is(runErr, flag.ErrHelp):
		fmt.Fprintln(stderr, "usage: forumctl", cmd.usage)
		return 2
	default:
		fmt.Fprintln(stderr, "error:", runErr)
		return 1
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "forumctl [-config_folder dir] [-base-url url] [-state-dir dir] <command> [flags]")
	fmt.Fprintln(w, "\nCommands:")
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.err)
	return fs
}

// signedIn resolves the saved session and fails when there is none.
func (c *cli) signedIn(ctx context.Context) error {
	c.deps.Boot(ctx)
	if !c.deps.Session.IsAuthenticated() {
		return fmt.Errorf("%w (run forumctl login)", errors.ErrNotAuthenticated)
	}
	return nil
}

func (c *cli) printJSON(v any) {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// failure turns the recorded outcome of an action into an error.
func failure(t *state.Tracker) error {
	if fields := t.FieldErrors.Get(); !fields.Valid() {
		return fields
	}
	if msg := t.Error.Get(); msg != "" {
		return stderrors.New(msg)
	}
	return stderrors.New("request did not complete")
}
