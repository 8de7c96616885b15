package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
)

const shellPrompt = "> "

type shellCommand struct {
	name  string
	help  string
	usage string
	// minArgs and maxArgs bound the arguments after the command name
	minArgs int
	maxArgs int
	run     func(s *shell, args []string) error
}

// shell runs regctl commands line by line against one app, so values set
// in one line are seen by the next.
type shell struct {
	a           *app
	out         io.Writer
	interactive bool
	commands    []shellCommand
}

func newShell(a *app, out io.Writer, interactive bool) *shell {
	s := &shell{a: a, out: out, interactive: interactive}
	s.commands = []shellCommand{
		{"get", "get a parameter value", "get <param>", 1, 1, (*shell).get},
		{"set", "set a parameter value", "set <param> <value>", 2, 2, (*shell).set},
		{"list", "list parameters", "list [module/parameter]", 0, 1, (*shell).list},
		{"save", "save all parameters", "save", 0, 0, (*shell).save},
		{"load", "load stored configurations", "load", 0, 0, (*shell).load},
		{"dump", "dumps everything in storage", "dump", 0, 0, (*shell).dump},
		{"commit", "apply one group or all groups", "commit [group]", 0, 1, (*shell).commit},
		{"help", "print this list", "help", 0, 0, (*shell).help},
	}
	return s
}

// Run reads commands until EOF or exit. Command failures are printed and
// do not end the shell.
func (s *shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if s.interactive {
			fmt.Fprint(s.out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		s.exec(fields[0], fields[1:])
	}
	if s.interactive {
		fmt.Fprintln(s.out)
	}
	return scanner.Err()
}

func (s *shell) exec(name string, args []string) {
	for _, c := range s.commands {
		if c.name != name {
			continue
		}
		if len(args) < c.minArgs || len(args) > c.maxArgs {
			fmt.Fprintf(s.out, "usage: %s\n", c.usage)
			return
		}
		logging.Debug("Shell command", zap.String("command", name), zap.Strings("args", args))
		if err := c.run(s, args); err != nil {
			logging.Warn("Shell command failed", zap.String("command", name), zap.Error(err))
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		return
	}
	fmt.Fprintf(s.out, "%s: command not found (try help)\n", name)
}

func (s *shell) get(args []string) error {
	v, err := s.a.get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, v)
	return nil
}

func (s *shell) set(args []string) error {
	return s.a.set(args[0], args[1])
}

func (s *shell) list(args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	rows, err := s.a.list(name)
	for _, r := range rows {
		fmt.Fprintf(s.out, "%s = %s\n", r.Key, r.Value)
	}
	return err
}

func (s *shell) save(args []string) error {
	return s.a.save()
}

func (s *shell) load(args []string) error {
	return s.a.loadStored()
}

func (s *shell) dump(args []string) error {
	rows, err := s.a.dump()
	for _, r := range rows {
		fmt.Fprintf(s.out, "%s \t %s\n", r.Key, r.Value)
	}
	return err
}

func (s *shell) commit(args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return s.a.commit(name)
}

func (s *shell) help(args []string) error {
	for _, c := range s.commands {
		fmt.Fprintf(s.out, "%-8s %s\n", c.name, c.help)
	}
	fmt.Fprintf(s.out, "%-8s %s\n", "exit", "leave the shell")
	return nil
}
