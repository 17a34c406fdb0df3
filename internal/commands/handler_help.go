package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/storage"
)

// HelpHandlerFactory creates handlers that display command help.
type HelpHandlerFactory struct {
	commands storage.Storer[*Command]
	pub      Teller
}

// NewHelpHandlerFactory creates a new HelpHandlerFactory.
func NewHelpHandlerFactory(commands storage.Storer[*Command], pub Teller) *HelpHandlerFactory {
	return &HelpHandlerFactory{commands: commands, pub: pub}
}

func (f *HelpHandlerFactory) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "command", Required: false},
		},
	}
}

func (f *HelpHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *HelpHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		command := cmdCtx.Config["command"]
		if command == "" {
			command = stringInput(cmdCtx, "command")
		}

		var text string
		if command != "" {
			var err error
			if text, err = f.showCommand(command); err != nil {
				return err
			}
		} else {
			text = f.listCommands()
		}
		return tellLine(f.pub, cmdCtx.Actor, text)
	}, nil
}

// listCommands displays all commands grouped by category.
func (f *HelpHandlerFactory) listCommands() string {
	all := f.commands.GetAll()

	groups := make(map[string][]string)
	for id, cmd := range all {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], string(id))
	}

	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	lines := []string{"Available commands:"}
	for _, cat := range categories {
		cmds := groups[cat]
		sort.Strings(cmds)
		lines = append(lines, fmt.Sprintf("  %s: %s", display.Capitalize(cat), strings.Join(cmds, ", ")))
	}
	return strings.Join(lines, "\n")
}

// showCommand displays detailed help for a specific command.
func (f *HelpHandlerFactory) showCommand(name string) (string, error) {
	name = strings.ToLower(name)
	cmd := f.commands.Get(name)
	if cmd == nil {
		return "", NewUserError(fmt.Sprintf("Command %q is unknown.", name))
	}

	lines := []string{fmt.Sprintf("%s: %s", name, cmd.Description)}
	if len(cmd.Inputs) > 0 {
		lines = append(lines, fmt.Sprintf("Usage: %s", cmd.Usage(name)))
	}
	if len(cmd.Aliases) > 0 {
		lines = append(lines, fmt.Sprintf("Aliases: %s", strings.Join(cmd.Aliases, ", ")))
	}
	return strings.Join(lines, "\n"), nil
}
