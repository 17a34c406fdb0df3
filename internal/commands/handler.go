package commands

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/storage"
	"github.com/pixil98/go-royale/internal/telemetry"
)

// ParsedInput represents a validated and parsed command input.
type ParsedInput struct {
	Spec  *InputSpec
	Raw   string // Original player input
	Value any    // Parsed value: int for number, string for string
}

// Session is the connection a command was typed on.
type Session interface {
	Identity() game.Identity
	// Channel is the room the session is currently talking in.
	Channel() game.RoomID
	SetChannel(game.RoomID)
	Quit()
}

// CommandContext is everything a compiled command sees when it runs.
type CommandContext struct {
	Actor   game.Identity
	Session Session
	Inputs  map[string]any
	Config  map[string]string
}

// CommandFunc is the signature for compiled command functions.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) error

// ConfigRequirement names a config key a handler reads.
type ConfigRequirement struct {
	Name     string
	Required bool
}

// HandlerSpec describes what a handler expects from its command definition.
type HandlerSpec struct {
	Config []ConfigRequirement
}

// HandlerFactory creates CommandFuncs from command configurations.
type HandlerFactory interface {
	// Spec returns the config the handler understands. Nil accepts anything.
	Spec() *HandlerSpec
	// ValidateConfig validates that the config contains required fields.
	ValidateConfig(config map[string]any) error
	// Create creates a CommandFunc.
	Create() (CommandFunc, error)
}

// compiledCommand holds a command that's been validated and compiled.
type compiledCommand struct {
	name    string
	cmd     *Command
	cmdFunc CommandFunc
}

type Handler struct {
	store     storage.Storer[*Command]
	factories map[string]HandlerFactory
	compiled  map[storage.Identifier]*compiledCommand
}

func NewHandler(c storage.Storer[*Command]) *Handler {
	h := &Handler{
		store:     c,
		factories: make(map[string]HandlerFactory),
		compiled:  make(map[storage.Identifier]*compiledCommand),
	}
	// Register built-in handlers
	_ = h.RegisterFactory("quit", &QuitHandlerFactory{})
	return h
}

// RegisterFactory registers a handler factory by name.
// The name must match the "handler" field in command JSON definitions.
func (h *Handler) RegisterFactory(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("handler factory cannot be nil")
	}
	if _, exists := h.factories[name]; exists {
		return fmt.Errorf("handler factory %q already registered", name)
	}
	h.factories[name] = factory
	return nil
}

// CompileAll compiles all commands from the store.
// Call this after all handler factories have been registered.
func (h *Handler) CompileAll() error {
	all := h.store.GetAll()
	ids := make([]storage.Identifier, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := h.compile(id, all[id]); err != nil {
			return fmt.Errorf("compiling command %q: %w", id, err)
		}
	}
	return nil
}

func (h *Handler) compile(id storage.Identifier, cmd *Command) error {
	factory, ok := h.factories[cmd.Handler]
	if !ok {
		return fmt.Errorf("unknown handler %q", cmd.Handler)
	}

	if err := validateSpec(cmd, factory.Spec()); err != nil {
		return err
	}
	if err := factory.ValidateConfig(cmd.Config); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if _, exists := h.compiled[id]; exists {
		return fmt.Errorf("command %q conflicts with an existing command or alias", id)
	}
	for _, alias := range cmd.Aliases {
		if _, exists := h.compiled[storage.Identifier(strings.ToLower(alias))]; exists {
			return fmt.Errorf("alias %q conflicts with an existing command or alias", alias)
		}
	}

	cmdFunc, err := factory.Create()
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	cc := &compiledCommand{
		name:    string(id),
		cmd:     cmd,
		cmdFunc: cmdFunc,
	}
	h.compiled[id] = cc
	for _, alias := range cmd.Aliases {
		h.compiled[storage.Identifier(strings.ToLower(alias))] = cc
	}
	return nil
}

// Exec runs a command typed on sess.
func (h *Handler) Exec(ctx context.Context, sess Session, cmdName string, rawArgs ...string) error {
	compiled, ok := h.compiled[storage.Identifier(strings.ToLower(cmdName))]
	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", cmdName))
	}

	ctx, span := telemetry.Tracer("commands").Start(ctx, "command.exec")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", compiled.name),
		attribute.String("actor", string(sess.Identity())),
	)

	parsed, err := h.parseInputs(compiled.cmd.Inputs, rawArgs)
	if err != nil {
		return err
	}
	inputs := make(map[string]any, len(parsed))
	for _, p := range parsed {
		inputs[p.Spec.Name] = p.Value
	}

	config, err := h.expandConfig(compiled.cmd.Config, sess.Identity(), inputs)
	if err != nil {
		return fmt.Errorf("expanding config: %w", err)
	}

	slog.DebugContext(ctx, "executing command", "command", compiled.name, "actor", sess.Identity())
	return userFacing(compiled.cmdFunc(ctx, &CommandContext{
		Actor:   sess.Identity(),
		Session: sess,
		Inputs:  inputs,
		Config:  config,
	}))
}

// parseInputs validates raw string arguments against input specs.
func (h *Handler) parseInputs(specs []InputSpec, rawArgs []string) ([]ParsedInput, error) {
	requiredCount := 0
	for _, spec := range specs {
		if spec.Required {
			requiredCount++
		}
	}

	if len(rawArgs) < requiredCount {
		for i, spec := range specs {
			if spec.Required && i >= len(rawArgs) && spec.Missing != "" {
				return nil, NewUserError(spec.Missing)
			}
		}
		return nil, NewUserError(fmt.Sprintf("Expected at least %d argument(s), got %d.", requiredCount, len(rawArgs)))
	}

	// If no rest input, check we don't have too many args
	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(fmt.Sprintf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs)))
	}

	inputs := make([]ParsedInput, 0, len(specs))
	argIndex := 0

	for i := range specs {
		spec := &specs[i]

		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(fmt.Sprintf("Missing required input: %s.", spec.Name))
			}
			continue
		}

		var raw string
		if spec.Rest {
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := h.parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, ParsedInput{
			Spec:  spec,
			Raw:   raw,
			Value: value,
		})
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func (h *Handler) parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown input type %q", inputType)
	}
}

type templateData struct {
	Actor  game.Identity
	Inputs map[string]any
}

// expandConfig renders every config value as a template.
func (h *Handler) expandConfig(config map[string]any, actor game.Identity, inputs map[string]any) (map[string]string, error) {
	data := templateData{Actor: actor, Inputs: inputs}

	out := make(map[string]string, len(config))
	for key, v := range config {
		s, _ := v.(string)
		expanded, err := display.Expand(s, data)
		if err != nil {
			return nil, fmt.Errorf("config %q: %w", key, err)
		}
		out[key] = expanded
	}
	return out, nil
}

func validateSpec(cmd *Command, spec *HandlerSpec) error {
	if spec == nil {
		return nil
	}

	known := make(map[string]bool, len(spec.Config))
	for _, req := range spec.Config {
		known[req.Name] = true
		if _, ok := cmd.Config[req.Name]; req.Required && !ok {
			return fmt.Errorf("missing required config %q", req.Name)
		}
	}
	for key := range cmd.Config {
		if !known[key] {
			return fmt.Errorf("config %q is not used by handler %q", key, cmd.Handler)
		}
	}
	return nil
}
