package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type recordingShape struct {
	calls []string
	rot   float64
	long  float64
	trans float64
	at    r3.Vec
}

func (r *recordingShape) Rotate(a float64) {
	r.calls = append(r.calls, "rotate")
	r.rot = a
}

func (r *recordingShape) Scale(l, t float64) {
	r.calls = append(r.calls, "scale")
	r.long, r.trans = l, t
}

func (r *recordingShape) MoveTo(c r3.Vec) {
	r.calls = append(r.calls, "move")
	r.at = c
}

func mustMass(id physics.BodyID, m float64, p r3.Vec) *physics.Body {
	b, err := physics.NewMass(id, m, p)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func mustSpring(k float64, a, b *physics.Body) *physics.Spring {
	s, err := physics.NewSpring(k, a, b)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func tick(dt float64, springs []*physics.Spring, bodies ...*physics.Body) {
	for _, s := range springs {
		s.Apply()
	}
	for _, b := range bodies {
		Expect(physics.Integrate(b, dt)).To(Succeed())
	}
}

var _ = Describe("Spring", func() {
	Describe("NewSpring", func() {
		It("snapshots the rest length and starts unstretched", func() {
			a := mustMass(0, 1, r3.Vec{})
			b := mustMass(1, 1, r3.Vec{X: 3, Y: 4})
			s := mustSpring(2, a, b)

			Expect(s.RestLength()).To(Equal(5.0))
			Expect(s.StretchRatio()).To(Equal(1.0))
			Expect(s.Angle()).To(BeNumerically("~", math.Atan2(4, 3), 1e-12))
		})

		It("rejects coincident endpoints", func() {
			a := mustMass(0, 1, r3.Vec{X: 1})
			b := mustMass(1, 1, r3.Vec{X: 1})
			s, err := physics.NewSpring(1, a, b)
			Expect(err).To(MatchError(dynamo.ErrDegenerateSpring))
			Expect(s).To(BeNil())
		})

		It("rejects nil endpoints", func() {
			a := mustMass(0, 1, r3.Vec{})
			_, err := physics.NewSpring(1, a, nil)
			Expect(err).To(MatchError(dynamo.ErrUnknownBody))
		})

		It("accepts a wall as an endpoint", func() {
			m := mustMass(0, 10, r3.Vec{X: 2})
			w := physics.NewWall(1, 0.5, r3.Vec{X: 3})
			s := mustSpring(0.125, m, w)
			Expect(s.RestLength()).To(Equal(1.0))
		})
	})

	Describe("Apply", func() {
		It("adds equal and opposite forces", func() {
			a := mustMass(0, 1, r3.Vec{X: -1, Y: 0.3})
			b := mustMass(1, 1, r3.Vec{X: 1})
			s := mustSpring(2, a, b)
			Expect(b.Kick(r3.Vec{X: 0.7, Y: -0.4})).To(Succeed())
			Expect(physics.Integrate(b, 1)).To(Succeed())

			s.Apply()
			fa, fb := a.Force(), b.Force()
			Expect(fa.X).To(Equal(-fb.X))
			Expect(fa.Y).To(Equal(-fb.Y))
			Expect(fa.Z).To(Equal(-fb.Z))
			Expect(r3.Norm(fb)).To(BeNumerically(">", 0))
		})

		It("pushes apart when compressed", func() {
			a := mustMass(0, 1, r3.Vec{})
			b := mustMass(1, 1, r3.Vec{X: 2})
			s := mustSpring(3, a, b)
			Expect(b.Kick(r3.Vec{X: -1})).To(Succeed())
			Expect(physics.Integrate(b, 0.5)).To(Succeed())

			s.Apply()
			Expect(b.Force().X).To(BeNumerically("~", 1.5, 1e-12))
			Expect(a.Force().X).To(BeNumerically("~", -1.5, 1e-12))
			Expect(s.StretchRatio()).To(BeNumerically("<", 1))
		})

		It("pulls together when stretched", func() {
			a := mustMass(0, 1, r3.Vec{})
			b := mustMass(1, 1, r3.Vec{X: 2})
			s := mustSpring(3, a, b)
			Expect(b.Kick(r3.Vec{X: 1})).To(Succeed())
			Expect(physics.Integrate(b, 0.5)).To(Succeed())

			s.Apply()
			Expect(b.Force().X).To(BeNumerically("~", -1.5, 1e-12))
			Expect(a.Force().X).To(BeNumerically("~", 1.5, 1e-12))
			Expect(s.StretchRatio()).To(BeNumerically("~", 1.25, 1e-12))
		})

		It("accumulates across springs sharing a body", func() {
			left := physics.NewAnchor(0, r3.Vec{X: -1})
			mid := mustMass(1, 1, r3.Vec{})
			right := physics.NewAnchor(2, r3.Vec{X: 1})
			s1 := mustSpring(1, left, mid)
			s2 := mustSpring(1, mid, right)
			Expect(mid.Kick(r3.Vec{X: 0.5})).To(Succeed())
			Expect(physics.Integrate(mid, 0.2)).To(Succeed())

			s1.Apply()
			s2.Apply()
			Expect(mid.Force().X).To(BeNumerically("~", -0.2, 1e-12))
		})
	})

	Describe("near-zero separation", func() {
		It("holds the last direction, angle and stretch", func() {
			a := mustMass(0, 1, r3.Vec{})
			b := mustMass(1, 1, r3.Vec{X: 1, Y: 1})
			s := mustSpring(1, a, b)

			Expect(b.Kick(r3.Vec{X: -0.5, Y: -0.5})).To(Succeed())
			Expect(physics.Integrate(b, 1)).To(Succeed())
			s.Apply()
			angle, ratio := s.Angle(), s.StretchRatio()
			a.AddForce(r3.Scale(-1, a.Force()))
			b.AddForce(r3.Scale(-1, b.Force()))

			Expect(physics.Integrate(b, 1)).To(Succeed())
			Expect(b.Position()).To(Equal(a.Position()))

			d := s.Apply()
			Expect(s.Angle()).To(Equal(angle))
			Expect(s.StretchRatio()).To(Equal(ratio))
			Expect(math.IsNaN(b.Force().X)).To(BeFalse())
			Expect(b.Force().X).To(BeNumerically("~", 1.0, 1e-12))
			Expect(d.Rotate).To(BeZero())
			Expect(d.ScaleLong).To(Equal(1.0))
			Expect(d.ScaleTransverse).To(Equal(1.0))
		})
	})

	Describe("deformation", func() {
		It("rotates, then scales, then moves", func() {
			a := mustMass(0, 1, r3.Vec{})
			b := mustMass(1, 1, r3.Vec{X: 2})
			s := mustSpring(1, a, b)
			Expect(b.Kick(r3.Vec{Y: 2})).To(Succeed())
			Expect(physics.Integrate(b, 1)).To(Succeed())

			shape := &recordingShape{}
			physics.Deform(shape, s.Apply())

			Expect(shape.calls).To(Equal([]string{"rotate", "scale", "move"}))
			Expect(shape.rot).To(BeNumerically("~", math.Pi/4, 1e-12))
			dStretch := math.Sqrt(8)/2 - 1
			Expect(shape.long).To(BeNumerically("~", dStretch*math.Cos(math.Pi/4)+1, 1e-12))
			Expect(shape.trans).To(BeNumerically("~", dStretch*math.Sin(math.Pi/4)+1, 1e-12))
			Expect(shape.at).To(Equal(r3.Vec{X: 1, Y: 1}))
		})

		It("is a no-op for a nil drawable", func() {
			Expect(func() { physics.Deform(nil, physics.Deformation{}) }).NotTo(Panic())
		})
	})

	DescribeTable("SignedAngle",
		func(v r3.Vec, want float64) {
			Expect(physics.SignedAngle(v)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("+x", r3.Vec{X: 1}, 0.0),
		Entry("+y", r3.Vec{Y: 1}, math.Pi/2),
		Entry("-y", r3.Vec{Y: -1}, -math.Pi/2),
		Entry("-x", r3.Vec{X: -1}, math.Pi),
		Entry("lower left", r3.Vec{X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2}, -3*math.Pi/4),
		Entry("slightly over unit", r3.Vec{X: 1 + 1e-15}, 0.0),
	)

	Describe("properties over many ticks", func() {
		It("never changes the rest length", func() {
			a := mustMass(0, 3, r3.Vec{X: -1})
			b := mustMass(1, 1.5, r3.Vec{X: 1, Y: 0.5})
			s := mustSpring(2, a, b)
			rest := s.RestLength()
			Expect(b.Kick(r3.Vec{X: 0.4, Y: -0.9})).To(Succeed())

			for i := 0; i < 500; i++ {
				tick(0.01, []*physics.Spring{s}, a, b)
				Expect(s.RestLength()).To(Equal(rest))
			}
		})

		It("keeps an equal-mass pair at rest length stationary", func() {
			a := mustMass(0, 1, r3.Vec{X: -1})
			b := mustMass(1, 1, r3.Vec{X: 1})
			s := mustSpring(5, a, b)

			for i := 0; i < 200; i++ {
				tick(0.05, []*physics.Spring{s}, a, b)
			}
			Expect(a.Position()).To(Equal(r3.Vec{X: -1}))
			Expect(b.Position()).To(Equal(r3.Vec{X: 1}))
			Expect(a.Velocity()).To(Equal(r3.Vec{}))
			Expect(b.Velocity()).To(Equal(r3.Vec{}))
		})
	})

	Describe("two-body scenario", func() {
		It("develops a restoring pair after a kick", func() {
			a := mustMass(0, 3, r3.Vec{X: -1})
			b := mustMass(1, 1.5, r3.Vec{X: 1})
			s := mustSpring(2.0, a, b)
			Expect(s.RestLength()).To(Equal(2.0))

			tick(0.1, []*physics.Spring{s}, a, b)
			Expect(a.Position()).To(Equal(r3.Vec{X: -1}))
			Expect(b.Position()).To(Equal(r3.Vec{X: 1}))

			Expect(b.Kick(r3.Vec{X: -0.25})).To(Succeed())
			tick(0.1, []*physics.Spring{s}, a, b)
			Expect(b.Position().X).To(BeNumerically("<", 1))
			Expect(s.StretchRatio()).To(Equal(1.0))

			s.Apply()
			Expect(s.StretchRatio()).To(BeNumerically("<", 1))
			Expect(b.Force().X).To(BeNumerically(">", 0))
			Expect(a.Force().X).To(BeNumerically("<", 0))
			Expect(a.Force().X).To(Equal(-b.Force().X))
		})
	})
})
