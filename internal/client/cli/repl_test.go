package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls    []string
	args     [][]string
	reported []error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) call(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) Register(context.Context) error { return f.call("register", nil) }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.call("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.call("logout", nil)
}
func (f *fakeExec) Profile(context.Context) error    { return f.call("profile", nil) }
func (f *fakeExec) Onboarding(context.Context) error { return f.call("onboarding", nil) }
func (f *fakeExec) AddWorkout(context.Context) error { return f.call("add", nil) }
func (f *fakeExec) List(_ context.Context, args []string) error {
	return f.call("list", args)
}
func (f *fakeExec) Show(_ context.Context, args []string) error   { return f.call("show", args) }
func (f *fakeExec) Edit(_ context.Context, args []string) error   { return f.call("edit", args) }
func (f *fakeExec) Delete(_ context.Context, args []string) error { return f.call("delete", args) }
func (f *fakeExec) Sync(context.Context) error                    { return f.call("sync", nil) }
func (f *fakeExec) Status(context.Context) error                  { return f.call("status", nil) }
func (f *fakeExec) report(err error) {
	if err != nil {
		f.reported = append(f.reported, err)
	}
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(
		"help\n"+
			"add\n"+ // ignored before login
			"login\n"+
			"help\n"+
			"add\n"+
			"list 2025-05-01 2025-05-07\n"+
			"show 3\n"+
			"edit 3\n"+
			"delete 3\n"+
			"profile\n"+
			"onboarding\n"+
			"sync\n"+
			"status\n"+
			"foobar\n"+
			"logout\n"+
			"sync\n"+ // ignored after logout
			"exit\n"+
			"profile\n"))

	assert.Equal(t, []string{
		"login", "add", "list", "show", "edit", "delete",
		"profile", "onboarding", "sync", "status", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"2025-05-01", "2025-05-07"}, exec.args[2])
	assert.Equal(t, []string{"3"}, exec.args[3])
	assert.Empty(t, exec.reported)
}

func TestRunREPL_EOFAndCancel(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("l"))
	assert.Equal(t, []string{"list"}, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{loggedIn: true}
	runREPL(ctx, exec, func() string { return "s" }, rdr("sync\n"))
	assert.Empty(t, exec.calls)
}
