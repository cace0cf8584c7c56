package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
)

const helpText = `Available commands:
  login <user>      authenticate (password is prompted)
  resume            reauthenticate with the saved session cookie
  logout
  groups            list your groups
  use <group>       make a group the working group
  join <group> | leave <group> | newgroup <name>
  ls | cd <dir> | mkdir <dir> | rm <file> | rmdir <dir>
  exit | quit`

// runREPL reads one command per line from in and dispatches it to app. The
// argument is the rest of the line, so names may contain spaces. Command
// errors are reported by the handlers and never stop the loop; it ends on
// EOF or "exit".
func runREPL(ctx context.Context, app *App, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		app.printf("gs> %s > ", app.status())
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			app.printf("%s", helpText)
		case "login":
			_ = app.Login(ctx, arg)
		case "resume":
			_ = app.Resume(ctx)
		case "logout":
			_ = app.Logout(ctx)
		case "groups":
			_ = app.Groups(ctx)
		case "use":
			_ = app.Use(ctx, arg)
		case "join":
			_ = app.Join(ctx, arg)
		case "leave":
			_ = app.Leave(ctx, arg)
		case "newgroup":
			_ = app.NewGroup(ctx, arg)
		case "ls", "list":
			_ = app.List(ctx)
		case "cd":
			_ = app.Cd(ctx, arg)
		case "mkdir":
			_ = app.Mkdir(ctx, arg)
		case "rm":
			_ = app.Remove(ctx, arg)
		case "rmdir":
			_ = app.RemoveDir(ctx, arg)
		case "exit", "quit":
			app.printf("Bye!")
			return
		default:
			app.printf("Unknown command: %s", cmd)
		}
	}
}
