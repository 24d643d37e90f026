package app

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeBall
)

// wallRadius keeps fast balls from tunnelling through the box.
const wallRadius = 8

// Scene is a boxed chipmunk space with a handful of falling balls. The Work
// screen acquires one on enter and releases it on exit.
type Scene struct {
	space  *cp.Space
	balls  []*cp.Body
	width  float64
	height float64
	radius float64
}

type SceneOptions struct {
	Width   float64
	Height  float64
	Gravity float64
	Balls   int
	Radius  float64
}

func NewScene(opts SceneOptions) *Scene {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: opts.Gravity})

	s := &Scene{
		space:  space,
		width:  opts.Width,
		height: opts.Height,
		radius: opts.Radius,
	}
	s.buildWalls()
	for i := range opts.Balls {
		s.addBall(i, opts.Balls)
	}
	return s
}

func (s *Scene) buildWalls() {
	w, h := s.width, s.height
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: w, Y: 0}},
		{a: cp.Vector{X: 0, Y: h}, b: cp.Vector{X: w, Y: h}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: h}},
		{a: cp.Vector{X: w, Y: 0}, b: cp.Vector{X: w, Y: h}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(s.space.StaticBody, seg.a, seg.b, wallRadius)
		shape.SetFriction(0.8)
		shape.SetElasticity(0.6)
		shape.SetCollisionType(collisionTypeWall)
		s.space.AddShape(shape)
	}
}

// addBall spreads balls along the top third of the box.
func (s *Scene) addBall(i, n int) {
	const mass = 1.0
	r := s.radius
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, r, cp.Vector{}))
	x := s.width * float64(i+1) / float64(n+1)
	y := s.height/6 + math.Mod(float64(i)*r*1.5, s.height/6)
	body.SetPosition(cp.Vector{X: x, Y: y})
	s.space.AddBody(body)

	shape := cp.NewCircle(body, r, cp.Vector{})
	shape.SetFriction(0.7)
	shape.SetElasticity(0.6)
	shape.SetCollisionType(collisionTypeBall)
	s.space.AddShape(shape)
	s.balls = append(s.balls, body)
}

// Step advances the simulation by dt seconds.
func (s *Scene) Step(dt float64) {
	if s == nil || s.space == nil {
		return
	}
	s.space.Step(dt)
}

// Positions returns the centre of every ball.
func (s *Scene) Positions() []cp.Vector {
	out := make([]cp.Vector, 0, len(s.balls))
	for _, b := range s.balls {
		out = append(out, b.Position())
	}
	return out
}

func (s *Scene) Radius() float64 { return s.radius }

func (s *Scene) Space() *cp.Space { return s.space }

func (s *Scene) Size() (w, h float64) { return s.width, s.height }
