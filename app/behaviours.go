package app

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sort"

	"github.com/milk9111/appflow/common"
	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

var errNoCollaborator = errors.New("app: collaborator not configured")

// Views shows and hides named screens.
type Views interface {
	Show(view string) error
	Hide(view string)
}

// Captions draws a line of text over the current view.
type Captions interface {
	SetCaption(text string, c color.Color)
	ClearCaption()
}

type Clipboard interface {
	WriteText(text string) error
}

// Stage draws the active physics scene, if any.
type Stage interface {
	SetScene(s *Scene)
}

// Deps are the collaborators behaviours built by Register call into. A nil
// Clipboard turns clipboard behaviours into no-ops; the others are required
// by the behaviours that use them.
type Deps struct {
	Actions   *Actions
	Views     Views
	Captions  Captions
	Clipboard Clipboard
	Stage     Stage
}

// Register adds the view, caption, input, clipboard and physics behaviours
// to c.
func Register(c *flow.Catalog, d Deps) *flow.Catalog {
	return c.
		Register("view", d.newView).
		Register("caption", d.newCaption).
		Register("input", d.newInput).
		Register("clipboard", d.newClipboard).
		Register("physics", d.newPhysics)
}

type viewArgs struct {
	View string `yaml:"view"`
}

type viewBehaviour struct {
	fsm.Base[string]
	views Views
	view  string
}

func (d Deps) newView(ctx flow.BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	if d.Views == nil {
		return nil, fmt.Errorf("view: %w", errNoCollaborator)
	}
	args, err := prefabs.DecodeArgs[viewArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.View == "" {
		return nil, fmt.Errorf("%w: view: no view name", flow.ErrInvalidSpec)
	}
	return &viewBehaviour{Base: fsm.NewBase(ctx.State), views: d.Views, view: args.View}, nil
}

func (b *viewBehaviour) OnEnter(fsm.Transition[string]) error {
	return b.views.Show(b.view)
}

func (b *viewBehaviour) OnExit(fsm.Transition[string]) error {
	b.views.Hide(b.view)
	return nil
}

type captionArgs struct {
	Text  string             `yaml:"text"`
	Color *prefabs.YAMLColor `yaml:"color"`
}

type captionBehaviour struct {
	fsm.Base[string]
	captions Captions
	text     string
	color    color.Color
}

func (d Deps) newCaption(ctx flow.BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	if d.Captions == nil {
		return nil, fmt.Errorf("caption: %w", errNoCollaborator)
	}
	args, err := prefabs.DecodeArgs[captionArgs](raw)
	if err != nil {
		return nil, err
	}
	return &captionBehaviour{
		Base:     fsm.NewBase(ctx.State),
		captions: d.Captions,
		text:     args.Text,
		color:    args.Color.Or(color.White),
	}, nil
}

func (b *captionBehaviour) OnEnter(fsm.Transition[string]) error {
	b.captions.SetCaption(b.text, b.color)
	return nil
}

func (b *captionBehaviour) OnExit(fsm.Transition[string]) error {
	b.captions.ClearCaption()
	return nil
}

type inputArgs struct {
	Bindings map[Action]string `yaml:"bindings"`
}

// inputBehaviour listens to actions while its state is current and requests
// the bound transition.
type inputBehaviour struct {
	fsm.Base[string]
	actions     *Actions
	bindings    map[Action]string
	log         *slog.Logger
	unsubscribe func()
}

func (d Deps) newInput(ctx flow.BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	if d.Actions == nil {
		return nil, fmt.Errorf("input: %w", errNoCollaborator)
	}
	args, err := prefabs.DecodeArgs[inputArgs](raw)
	if err != nil {
		return nil, err
	}
	if len(args.Bindings) == 0 {
		return nil, fmt.Errorf("%w: input: no bindings", flow.ErrInvalidSpec)
	}
	actions := make([]Action, 0, len(args.Bindings))
	for act := range args.Bindings {
		actions = append(actions, act)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	for _, act := range actions {
		target := args.Bindings[act]
		if !ctx.State.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: input: %s: %q is not a transition of %q", flow.ErrInvalidSpec, act, target, ctx.State.Label())
		}
	}
	return &inputBehaviour{
		Base:     fsm.NewBase(ctx.State),
		actions:  d.Actions,
		bindings: args.Bindings,
		log:      ctx.Logger,
	}, nil
}

func (b *inputBehaviour) OnEnter(fsm.Transition[string]) error {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.unsubscribe = b.actions.Subscribe(b.handle)
	return nil
}

func (b *inputBehaviour) OnExit(fsm.Transition[string]) error {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	return nil
}

func (b *inputBehaviour) handle(act Action) {
	target, ok := b.bindings[act]
	if !ok {
		return
	}
	if err := b.Request(target); err != nil {
		b.log.Warn("request failed", slog.String("action", string(act)), logger.To(target), logger.Error(err))
	}
}

type clipboardArgs struct {
	Text string `yaml:"text"`
}

// clipboardBehaviour copies its text on enter. A clipboard failure is logged,
// not returned: the screen still works without it.
type clipboardBehaviour struct {
	fsm.Base[string]
	clipboard Clipboard
	text      string
	log       *slog.Logger
}

func (d Deps) newClipboard(ctx flow.BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	args, err := prefabs.DecodeArgs[clipboardArgs](raw)
	if err != nil {
		return nil, err
	}
	return &clipboardBehaviour{
		Base:      fsm.NewBase(ctx.State),
		clipboard: d.Clipboard,
		text:      args.Text,
		log:       ctx.Logger,
	}, nil
}

func (b *clipboardBehaviour) OnEnter(fsm.Transition[string]) error {
	if b.clipboard == nil {
		b.log.Debug("clipboard disabled")
		return nil
	}
	if err := b.clipboard.WriteText(b.text); err != nil {
		b.log.Warn("clipboard write failed", logger.Error(err))
	}
	return nil
}

type physicsArgs struct {
	Gravity float64 `yaml:"gravity"`
	Bodies  int     `yaml:"bodies"`
	Radius  float64 `yaml:"radius"`
}

// physicsBehaviour owns a Scene while its state is current.
type physicsBehaviour struct {
	fsm.Base[string]
	stage Stage
	opts  SceneOptions
	scene *Scene
}

func (d Deps) newPhysics(ctx flow.BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	if d.Stage == nil {
		return nil, fmt.Errorf("physics: %w", errNoCollaborator)
	}
	args, err := prefabs.DecodeArgs[physicsArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.Bodies < 0 || args.Radius < 0 {
		return nil, fmt.Errorf("%w: physics: bodies and radius must not be negative", flow.ErrInvalidSpec)
	}
	if args.Radius == 0 {
		args.Radius = 8
	}
	return &physicsBehaviour{
		Base:  fsm.NewBase(ctx.State),
		stage: d.Stage,
		opts: SceneOptions{
			Width:   common.BaseWidth,
			Height:  common.BaseHeight,
			Gravity: args.Gravity,
			Balls:   args.Bodies,
			Radius:  args.Radius,
		},
	}, nil
}

func (b *physicsBehaviour) OnEnter(fsm.Transition[string]) error {
	b.scene = NewScene(b.opts)
	b.stage.SetScene(b.scene)
	return nil
}

func (b *physicsBehaviour) OnUpdate() error {
	b.scene.Step(common.FrameTime)
	return nil
}

func (b *physicsBehaviour) OnExit(fsm.Transition[string]) error {
	b.stage.SetScene(nil)
	b.scene = nil
	return nil
}
