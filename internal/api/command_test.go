package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Validate(t *testing.T) {

	type test struct {
		cmd           Command
		userValidator map[string]struct{}
		execValidator map[string]struct{}
		options       []Validator
		err           bool
	}

	var option string

	tests := map[string]test{
		"no-user-any": {
			cmd: Command{
				Content: "balance",
			},
			userValidator: Any(),
		},
		"no-user-err": {
			cmd: Command{
				Content: "balance",
			},
			userValidator: Contains("test"),
			err:           true,
		},
		"wrong-user": {
			cmd: Command{
				User:    "test-user",
				Content: "balance",
			},
			userValidator: Contains("test"),
			err:           true,
		},
		"correct-user": {
			cmd: Command{
				User:    "test-user",
				Content: "balance",
			},
			userValidator: Contains("test-user"),
		},
		"empty-content": {
			cmd: Command{
				User: "test-user",
			},
			userValidator: Contains("test-user"),
			err:           true,
		},
		"correct-exec": {
			cmd: Command{
				User:    "test-user",
				Content: "command option-1",
			},
			userValidator: Contains("test-user"),
			execValidator: Contains("command"),
			options:       []Validator{OneOf(&option, "option-1", "option-2")},
		},
		"no-exec": {
			cmd: Command{
				User:    "test-user",
				Content: "no-command option-1",
			},
			userValidator: Contains("test-user"),
			execValidator: Contains("command"),
			err:           true,
		},
		"missing-option": {
			cmd: Command{
				User:    "test-user",
				Content: "command",
			},
			userValidator: Contains("test-user"),
			execValidator: Contains("command"),
			options:       []Validator{OneOf(nil, "option-1")},
			err:           true,
		},
		"wrong-option": {
			cmd: Command{
				User:    "test-user",
				Content: "command option-3",
			},
			userValidator: Contains("test-user"),
			execValidator: Contains("command"),
			options:       []Validator{OneOf(nil, "option-1", "option-2")},
			err:           true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cmd.Validate(tt.userValidator, tt.execValidator, tt.options...)
			if tt.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Equal(t, "option-1", option)
}

func TestCommand_Text(t *testing.T) {
	assert.Equal(t, "yes", NewCommand(1, "user", " Yes ").Text())
}

func TestGrid(t *testing.T) {

	type test struct {
		width  int
		labels []string
		rows   [][]string
	}

	tests := map[string]test{
		"pairs": {
			width:  2,
			labels: []string{"BTC", "ETH", "SOL"},
			rows:   [][]string{{"BTC", "ETH"}, {"SOL"}},
		},
		"single": {
			width:  0,
			labels: []string{"BTC", "ETH"},
			rows:   [][]string{{"BTC"}, {"ETH"}},
		},
		"empty": {
			width: 3,
			rows:  [][]string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.rows, Grid(tt.width, tt.labels...))
		})
	}
}

func TestMessage_Buttons(t *testing.T) {
	msg := NewMessage("hello").WithButtons([]string{"a"})
	assert.False(t, msg.RemoveButtons)
	assert.Equal(t, [][]string{{"a"}}, msg.Buttons)
	msg.NoButtons()
	assert.True(t, msg.RemoveButtons)
	assert.Nil(t, msg.Buttons)
	assert.Equal(t, "hello\nworld", msg.AddLine("world").Text)
}
