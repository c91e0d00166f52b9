package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSession(t *testing.T) {
	var calls []string
	echo := &cobra.Command{
		Use:   "echo <word>",
		Short: "Echo a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loud, _ := cmd.Flags().GetBool("loud")
			word := args[0]
			if loud {
				word = strings.ToUpper(word)
			}
			calls = append(calls, word)
			return nil
		},
	}
	echo.Flags().Bool("loud", false, "Shout")

	fail := &cobra.Command{
		Use:  "fail",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("boom")
		},
	}

	commands := map[string]*cobra.Command{"echo": echo, "fail": fail}
	in := strings.NewReader("help\n\necho --loud hi\necho there\nfail\nnope\necho\nexit\necho never\n")
	var out bytes.Buffer

	require.NoError(t, runSession(in, &out, commands))

	// Flags are reset between invocations
	assert.Equal(t, []string{"HI", "there"}, calls)

	output := out.String()
	assert.Contains(t, output, "echo <word>")
	assert.Contains(t, output, "Error: boom")
	assert.Contains(t, output, "Unknown command: nope")
	assert.Contains(t, output, "accepts 1 arg(s)")
	assert.Contains(t, output, "Goodbye!")
}

func TestRunSession_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSession(strings.NewReader("help"), &out, map[string]*cobra.Command{}))
	assert.Contains(t, out.String(), "Available commands")
	assert.NotContains(t, out.String(), "Goodbye!")
}
