package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	require.Equal(t, "todolists", root.Use)

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{
		"serve", "lists", "show", "create", "rename", "delete",
		"add", "check", "uncheck", "remove", "complete-all", "test",
	} {
		assert.Contains(t, names, want)
	}
}

func TestNewRootCommand_Flags(t *testing.T) {
	root := NewRootCommand()

	tests := []struct {
		cmd       string
		flag      string
		shorthand string
		def       string
	}{
		{"", "verbose", "v", "false"},
		{"", "format", "", "text"},
		{"", "config", "", ""},
		{"serve", "addr", "", ""},
		{"serve", "storage", "", ""},
		{"test", "update", "", "false"},
		{"test", "filter", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			cmd := root
			if tt.cmd != "" {
				var err error
				cmd, _, err = root.Find([]string{tt.cmd})
				require.NoError(t, err)
			}
			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				f = cmd.PersistentFlags().Lookup(tt.flag)
			}
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestIsValidFormat(t *testing.T) {
	for format, want := range map[string]bool{
		"text": true,
		"json": true,
		"xml":  false,
		"":     false,
		"TEXT": false,
	} {
		assert.Equal(t, want, isValidFormat(format), format)
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--format", "yaml", "lists"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadConfig_MissingFileIsCommandError(t *testing.T) {
	opts := &RootOptions{ConfigPath: "/nonexistent/todolists.yaml", Getenv: func(string) string { return "" }}

	_, err := opts.loadConfig()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
