package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-royale/internal/commands"
	"github.com/pixil98/go-royale/internal/court"
	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/driver"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/listener"
	"github.com/pixil98/go-royale/internal/messaging"
	"github.com/pixil98/go-royale/internal/rooms"
	"github.com/pixil98/go-royale/internal/session"
	"github.com/pixil98/go-royale/internal/storage"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Message bus
	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	pub := messaging.NewPlayerPublisher(bus)
	provisioner := rooms.NewProvisioner(pub)
	broker := messaging.NewChoiceBroker(bus, provisioner)

	// Match
	kit, err := cfg.Storage.BuildKit()
	if err != nil {
		return nil, err
	}
	courtCfg, err := cfg.Match.courtConfig(kit)
	if err != nil {
		return nil, err
	}
	ct := court.NewCourt(provisioner, decision.NewResolver(broker, broker), courtCfg)

	// Commands
	cmds, err := cfg.Storage.Commands.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating command store: %w", err)
	}
	sheets, err := cfg.Storage.BuildRoleSheets()
	if err != nil {
		return nil, err
	}
	handler, err := buildCommandHandler(cmds, sheets, ct, provisioner, broker, pub)
	if err != nil {
		return nil, err
	}

	// Sessions and listeners
	sessions := session.NewManager(handler, bus, provisioner)
	cm := listener.NewConnectionManager(sessions)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("%s-%d", l.Protocol, l.Port)] = &afterBus{bus: bus, next: w}
	}

	drv := driver.NewDriver([]driver.Ticker{ct}, driver.WithTickLength(cfg.tickInterval()))

	workers := service.WorkerList{
		"nats":      bus,
		"court":     ct,
		"sessions":  sessions,
		"driver":    drv,
		"listeners": &listeners,
	}
	if exp := cfg.Telemetry.buildExporter(); exp != nil {
		workers["telemetry"] = exp
	}

	return workers, nil
}

func buildCommandHandler(
	cmds storage.Storer[*commands.Command],
	sheets storage.Storer[*game.RoleSheet],
	ct *court.Court,
	r *rooms.Provisioner,
	chooser commands.Chooser,
	pub commands.Teller,
) (*commands.Handler, error) {
	h := commands.NewHandler(cmds)

	factories := map[string]commands.HandlerFactory{
		"newgame":    commands.NewNewGameHandlerFactory(ct, pub),
		"endgame":    commands.NewEndGameHandlerFactory(ct),
		"join":       commands.NewJoinHandlerFactory(ct, r),
		"leave":      commands.NewLeaveHandlerFactory(ct, r),
		"start":      commands.NewStartHandlerFactory(ct),
		"next":       commands.NewNextHandlerFactory(ct),
		"who":        commands.NewWhoHandlerFactory(ct, pub),
		"substitute": commands.NewSubstituteHandlerFactory(ct),
		"stab":       commands.NewStabHandlerFactory(ct, pub),
		"give":       commands.NewGiveHandlerFactory(ct),
		"bag":        commands.NewBagHandlerFactory(ct, pub),
		"info":       commands.NewInfoHandlerFactory(ct, pub),
		"logs":       commands.NewLogsHandlerFactory(ct, pub),
		"roles":      commands.NewRolesHandlerFactory(sheets, pub),
		"note":       commands.NewNoteHandlerFactory(ct, pub),
		"notes":      commands.NewNotesHandlerFactory(ct, pub),
		"rip":        commands.NewRipHandlerFactory(ct, pub),
		"rooms":      commands.NewRoomsHandlerFactory(r, pub),
		"tune":       commands.NewTuneHandlerFactory(r, pub),
		"say":        commands.NewSayHandlerFactory(r),
		"choose":     commands.NewChooseHandlerFactory(chooser, pub),
		"help":       commands.NewHelpHandlerFactory(cmds, pub),
	}
	for name, f := range factories {
		if err := h.RegisterFactory(name, f); err != nil {
			return nil, fmt.Errorf("registering %s handler: %w", name, err)
		}
	}

	if err := h.CompileAll(); err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}
	return h, nil
}

type readier interface {
	WaitReady(ctx context.Context) error
}

// afterBus holds a worker back until the embedded bus accepts subscriptions.
type afterBus struct {
	bus  readier
	next service.Worker
}

func (a *afterBus) Start(ctx context.Context) error {
	if err := a.bus.WaitReady(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("waiting for message bus: %w", err)
	}
	return a.next.Start(ctx)
}
