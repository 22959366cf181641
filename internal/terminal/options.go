package terminal

import "sessiondeck/internal/config"

type options struct {
	assistant      string
	permissionFlag string
	editor         string
	shell          string
	scrollback     int
	dir            string
	env            []string
}

func defaultOptions() options {
	return fromConfig(config.Default())
}

func fromConfig(c config.Config) options {
	return options{
		assistant:      c.Assistant,
		permissionFlag: c.PermissionFlag,
		editor:         c.Editor,
		shell:          c.Shell,
		scrollback:     c.Scrollback,
		env:            []string{"TERM=xterm-256color", "COLORTERM=truecolor"},
	}
}

// Option customizes a Session.
type Option func(*options)

// WithConfig takes assistant, editor, shell and scrollback from c.
func WithConfig(c config.Config) Option {
	return func(o *options) {
		env := o.env
		*o = fromConfig(c)
		o.env = env
	}
}

// WithAssistant overrides the assistant binary and its permission flag.
func WithAssistant(bin, permissionFlag string) Option {
	return func(o *options) {
		o.assistant = bin
		o.permissionFlag = permissionFlag
	}
}

// WithEditor overrides the editor command.
func WithEditor(editor string) Option { return func(o *options) { o.editor = editor } }

// WithShell overrides the shell used for command lines.
func WithShell(shell string) Option { return func(o *options) { o.shell = shell } }

// WithScrollback sets how many history lines the screen keeps.
func WithScrollback(n int) Option { return func(o *options) { o.scrollback = n } }

// WithDir sets the child's starting directory.
func WithDir(dir string) Option { return func(o *options) { o.dir = dir } }

// WithEnv appends KEY=VALUE pairs to the child's environment.
func WithEnv(kv ...string) Option { return func(o *options) { o.env = append(o.env, kv...) } }
