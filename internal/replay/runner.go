// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/cargolog/cargolog/internal/compose"
	"github.com/cargolog/cargolog/internal/inventory"
	"github.com/cargolog/cargolog/internal/logging"
)

// Record is one JSONL journal line: a world mutation, a raw
// notification, or a control op. Fields beyond Op and Tick are
// populated per op; missing required fields fail the replay.
type Record struct {
	Op   string `json:"op"`
	Tick int64  `json:"tick"`

	Player int64 `json:"player,omitempty"`
	Robot  int64 `json:"robot,omitempty"`
	Entity int64 `json:"entity,omitempty"`

	// Target addresses a container for the adjust op:
	// "player:<id>" or "entity:<id>:<slot>".
	Target string `json:"target,omitempty"`

	Stack      *StackDef  `json:"stack,omitempty"`
	Item       *StackDef  `json:"item,omitempty"`
	Buffer     []StackDef `json:"buffer,omitempty"`
	Output     *StackDef  `json:"output,omitempty"`
	Recipe     *RecipeDef `json:"recipe,omitempty"`
	Spawn      *EntityDef `json:"spawn,omitempty"`
	FromPlayer bool       `json:"from_player,omitempty"`
}

// RecipeDef is a recipe in journal records.
type RecipeDef struct {
	Name        string     `json:"name"`
	Ingredients []StackDef `json:"ingredients"`
}

// Runner feeds journal records through a composer against a scripted
// world.
type Runner struct {
	composer *compose.Composer
	world    *World
	logger   *slog.Logger
}

// NewRunner creates a runner over the given world.
func NewRunner(composer *compose.Composer, world *World, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{composer: composer, world: world, logger: logger}
}

// Run replays a JSONL journal. Blank lines and lines starting with #
// are skipped. The first record that cannot be decoded or applied
// stops the replay.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return oops.Code("REPLAY_PARSE_FAILED").With("line", line).Wrap(err)
		}
		if err := r.Apply(ctx, rec); err != nil {
			return oops.With("line", line).Wrap(err)
		}
	}
	if err := sc.Err(); err != nil {
		return oops.Code("REPLAY_READ_FAILED").Wrap(err)
	}
	return nil
}

// Apply mutates the world and dispatches a single record.
func (r *Runner) Apply(ctx context.Context, rec Record) error {
	ctx = logging.ContextWithTick(ctx, rec.Tick)
	switch rec.Op {
	case "tick":
		r.composer.Tick(ctx, rec.Tick)
		return nil
	case "reset":
		r.composer.Reset()
		return nil
	case "spawn":
		return r.applySpawn(rec)
	case "invalidate":
		return r.applyInvalidate(rec)
	case "adjust":
		return r.applyAdjust(rec)
	case "player_joined":
		return r.withPlayer(rec, func(ref compose.PlayerRef) {
			r.composer.HandlePlayerJoined(ctx, compose.PlayerJoined{Tick: rec.Tick, Player: ref})
		})
	case "hand":
		return r.applyHand(ctx, rec)
	case "open":
		return r.applyOpen(ctx, rec)
	case "close":
		return r.applyClose(ctx, rec)
	case "quick_transfer":
		return r.applyQuickTransfer(ctx, rec)
	case "ground_drop":
		return r.applyGround(ctx, rec, true)
	case "ground_pickup":
		return r.applyGround(ctx, rec, false)
	case "craft":
		return r.applyCraft(ctx, rec)
	case "pre_mine":
		return r.applyPreMine(ctx, rec)
	case "post_mine":
		return r.applyPostMine(ctx, rec)
	case "mark_deconstruction":
		return r.applyMarkDecon(ctx, rec)
	case "robot_pre_mine":
		return r.applyRobotPreMine(ctx, rec)
	case "robot_post_mine":
		return r.applyRobotPostMine(ctx, rec)
	case "robot_build":
		return r.applyRobotBuild(ctx, rec)
	default:
		return oops.Code("REPLAY_UNKNOWN_OP").With("op", rec.Op).Errorf("unknown journal op")
	}
}

func (r *Runner) withPlayer(rec Record, fn func(compose.PlayerRef)) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	fn(r.world.Ref(p))
	return nil
}

func (r *Runner) applySpawn(rec Record) error {
	if rec.Spawn == nil {
		return oops.Code("REPLAY_BAD_RECORD").Errorf("spawn record without entity definition")
	}
	r.world.entities[rec.Spawn.ID] = newEntity(*rec.Spawn)
	return nil
}

func (r *Runner) applyInvalidate(rec Record) error {
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	e.invalid = true
	return nil
}

// applyAdjust mutates a container without raising a notification,
// modeling world changes the engine only sees indirectly.
func (r *Runner) applyAdjust(rec Record) error {
	if rec.Item == nil {
		return oops.Code("REPLAY_BAD_RECORD").Errorf("adjust record without item")
	}
	parts := strings.Split(rec.Target, ":")
	switch {
	case len(parts) == 2 && parts[0] == "player":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return oops.Code("REPLAY_BAD_RECORD").With("target", rec.Target).Wrap(err)
		}
		p, err := r.world.Player(id)
		if err != nil {
			return err
		}
		p.Main.Adjust(rec.Item.Name, rec.Item.Quality, rec.Item.Count)
		return nil
	case len(parts) == 3 && parts[0] == "entity":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return oops.Code("REPLAY_BAD_RECORD").With("target", rec.Target).Wrap(err)
		}
		e, err := r.world.Entity(id)
		if err != nil {
			return err
		}
		c, ok := e.slots[parts[2]]
		if !ok {
			return oops.Code("REPLAY_BAD_RECORD").With("target", rec.Target).Errorf("entity has no such slot")
		}
		c.Adjust(rec.Item.Name, rec.Item.Quality, rec.Item.Count)
		return nil
	default:
		return oops.Code("REPLAY_BAD_RECORD").With("target", rec.Target).Errorf("unparseable adjust target")
	}
}

func (r *Runner) applyHand(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	p.Hand = toLine(rec.Stack)
	r.composer.HandleHandChange(ctx, compose.HandChange{Tick: rec.Tick, Player: r.world.Ref(p)})
	return nil
}

func (r *Runner) applyOpen(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	p.Open = e
	r.composer.HandleContainerOpened(ctx, compose.ContainerOpened{
		Tick: rec.Tick, Player: r.world.Ref(p), Target: e,
	})
	return nil
}

func (r *Runner) applyClose(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	p.Open = nil
	r.composer.HandleContainerClosed(ctx, compose.ContainerClosed{Tick: rec.Tick, Player: r.world.Ref(p)})
	return nil
}

func (r *Runner) applyQuickTransfer(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandleQuickTransfer(ctx, compose.QuickTransfer{
		Tick: rec.Tick, Player: r.world.Ref(p), Target: e, FromPlayer: rec.FromPlayer,
	})
	return nil
}

func (r *Runner) applyGround(ctx context.Context, rec Record, drop bool) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	stack := toLine(rec.Stack)
	if drop {
		r.composer.HandleGroundDrop(ctx, compose.GroundDrop{Tick: rec.Tick, Player: r.world.Ref(p), Stack: stack})
	} else {
		r.composer.HandleGroundPickup(ctx, compose.GroundPickup{Tick: rec.Tick, Player: r.world.Ref(p), Stack: stack})
	}
	return nil
}

func (r *Runner) applyCraft(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	var recipe *compose.Recipe
	if rec.Recipe != nil {
		recipe = &compose.Recipe{Name: rec.Recipe.Name}
		for _, ing := range rec.Recipe.Ingredients {
			recipe.Ingredients = append(recipe.Ingredients, compose.Ingredient{
				Name: ing.Name, Quality: ing.Quality, Count: ing.Count,
			})
		}
	}
	r.composer.HandleCraft(ctx, compose.Craft{
		Tick: rec.Tick, Player: r.world.Ref(p), Recipe: recipe, Output: toLine(rec.Output),
	})
	return nil
}

func (r *Runner) applyPreMine(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandlePreMine(ctx, compose.PreMine{Tick: rec.Tick, Player: r.world.Ref(p), Target: e})
	return nil
}

func (r *Runner) applyPostMine(ctx context.Context, rec Record) error {
	p, err := r.world.Player(rec.Player)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandlePostMine(ctx, compose.PostMine{
		Tick: rec.Tick, Player: r.world.Ref(p), Target: e, Buffer: newContainer(rec.Buffer),
	})
	return nil
}

func (r *Runner) applyMarkDecon(ctx context.Context, rec Record) error {
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandleMarkDeconstruction(ctx, compose.MarkDeconstruction{Tick: rec.Tick, Target: e})
	return nil
}

func (r *Runner) applyRobotPreMine(ctx context.Context, rec Record) error {
	robot, err := r.world.Robot(rec.Robot)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandleRobotPreMine(ctx, compose.RobotPreMine{Tick: rec.Tick, Robot: robot, Target: e})
	return nil
}

func (r *Runner) applyRobotPostMine(ctx context.Context, rec Record) error {
	robot, err := r.world.Robot(rec.Robot)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandleRobotPostMine(ctx, compose.RobotPostMine{
		Tick: rec.Tick, Robot: robot, Target: e, Buffer: newContainer(rec.Buffer),
	})
	return nil
}

func (r *Runner) applyRobotBuild(ctx context.Context, rec Record) error {
	robot, err := r.world.Robot(rec.Robot)
	if err != nil {
		return err
	}
	e, err := r.world.Entity(rec.Entity)
	if err != nil {
		return err
	}
	r.composer.HandleRobotBuild(ctx, compose.RobotBuild{
		Tick: rec.Tick, Robot: robot, Target: e, Stack: toLine(rec.Stack),
	})
	return nil
}

func toLine(s *StackDef) *inventory.Line {
	if s == nil {
		return nil
	}
	q := s.Quality
	if q == "" {
		q = "normal"
	}
	return &inventory.Line{Name: s.Name, Quality: q, Count: s.Count}
}
