package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/appflow/app"
	"github.com/milk9111/appflow/common"
)

// captionFade is how much of the remaining distance the caption alpha covers
// each frame.
const captionFade = 0.15

// Views holds one ebitenui screen per view name and shows at most one at a
// time. It also draws the caption line flows set over the current view.
type Views struct {
	screens map[string]*ebitenui.UI
	current string
	face    ebtext.Face

	caption      string
	captionColor color.Color
	captionAlpha float32
}

func NewViews(actions *app.Actions) *Views {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	v := &Views{
		screens:      make(map[string]*ebitenui.UI),
		face:         face,
		captionColor: color.White,
	}
	push := func(act app.Action) func(*widget.ButtonClickedEventArgs) {
		return func(*widget.ButtonClickedEventArgs) { actions.Push(act) }
	}

	v.screens["main"] = v.menu("appflow", "",
		button{"About", push(app.ActionAbout)},
		button{"Work", push(app.ActionWork)},
		button{"Quit", push(app.ActionQuit)},
	)
	v.screens["about"] = v.menu("About",
		"Screens, timers and the work experience are all\nstates driven from prefabs/*.yaml.\nThe blurb has been copied to your clipboard.",
		button{"Back", push(app.ActionBack)},
	)
	v.screens["work"] = v.overlay(
		button{"Back", push(app.ActionBack)},
		button{"Next", push(app.ActionConfirm)},
	)
	return v
}

type button struct {
	label   string
	clicked func(*widget.ButtonClickedEventArgs)
}

func (v *Views) newButton(b button) *widget.Button {
	idle := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	hover := imageui.NewNineSliceColor(color.NRGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 255})
	return widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: idle, Hover: hover, Pressed: idle}),
		widget.ButtonOpts.Text(b.label, &v.face, &widget.ButtonTextColor{Idle: colornames.White}),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter, Stretch: true})),
		widget.ButtonOpts.ClickedHandler(b.clicked),
	)
}

// menu is a centred panel with a title, optional body text and a column of
// buttons.
func (v *Views) menu(title, body string, buttons ...button) *ebitenui.UI {
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/2, common.BaseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text(title, &v.face, colornames.White),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	))
	if body != "" {
		panel.AddChild(widget.NewText(
			widget.TextOpts.Text(body, &v.face, colornames.Lightgrey),
			widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
		))
	}
	for _, b := range buttons {
		panel.AddChild(v.newButton(b))
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

// overlay is a row of buttons along the top edge, leaving the rest of the
// screen to the stage.
func (v *Views) overlay(buttons ...button) *ebitenui.UI {
	bar := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Left: 8}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	for _, b := range buttons {
		bar.AddChild(v.newButton(b))
	}
	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)
	return &ebitenui.UI{Container: root}
}

func (v *Views) Show(view string) error {
	if _, ok := v.screens[view]; !ok {
		return fmt.Errorf("views: unknown view %q", view)
	}
	v.current = view
	return nil
}

func (v *Views) Hide(view string) {
	if v.current == view {
		v.current = ""
	}
}

func (v *Views) SetCaption(text string, c color.Color) {
	v.caption = text
	v.captionColor = c
	v.captionAlpha = 0
}

func (v *Views) ClearCaption() {
	v.caption = ""
}

// Update runs the visible screen's widgets and fades the caption in.
func (v *Views) Update() error {
	if ui := v.screens[v.current]; ui != nil {
		ui.Update()
	}
	if v.caption != "" {
		v.captionAlpha = common.Lerp(v.captionAlpha, 1, captionFade)
	}
	return nil
}

func (v *Views) Draw(screen *ebiten.Image) {
	if ui := v.screens[v.current]; ui != nil {
		ui.Draw(screen)
	}
	if v.caption == "" {
		return
	}
	w, _ := ebtext.Measure(v.caption, v.face, 0)
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate((common.BaseWidth-w)/2, common.BaseHeight-40)
	op.ColorScale.ScaleWithColor(v.captionColor)
	op.ColorScale.ScaleAlpha(v.captionAlpha)
	ebtext.Draw(screen, v.caption, v.face, op)
}
