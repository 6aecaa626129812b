package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Body", func() {
	Describe("NewMass", func() {
		It("starts at rest with an empty accumulator", func() {
			b, err := physics.NewMass(7, 2, r3.Vec{X: 1, Y: 2, Z: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.ID()).To(Equal(physics.BodyID(7)))
			Expect(b.IsMovable()).To(BeTrue())
			Expect(b.Position()).To(Equal(r3.Vec{X: 1, Y: 2}))
			Expect(b.Velocity()).To(Equal(r3.Vec{}))
			Expect(b.Force()).To(Equal(r3.Vec{}))
			Expect(b.Mass()).To(Equal(2.0))
		})

		DescribeTable("rejects non-positive mass",
			func(mass float64) {
				b, err := physics.NewMass(0, mass, r3.Vec{})
				Expect(err).To(MatchError(dynamo.ErrInvalidMass))
				Expect(b).To(BeNil())
			},
			Entry("zero", 0.0),
			Entry("negative", -1.5),
			Entry("NaN", math.NaN()),
		)
	})

	Describe("anchors", func() {
		It("refuse kicks and keep zero velocity", func() {
			w := physics.NewWall(1, 0.5, r3.Vec{X: 3})
			Expect(w.IsMovable()).To(BeFalse())
			Expect(w.Height()).To(Equal(0.5))
			Expect(w.Mass()).To(BeZero())

			err := w.Kick(r3.Vec{X: 1})
			Expect(err).To(MatchError(dynamo.ErrImmovableBody))
			Expect(w.Velocity()).To(Equal(r3.Vec{}))
		})

		It("accumulate force but never move", func() {
			a := physics.NewAnchor(2, r3.Vec{X: -1, Y: 4})
			a.AddForce(r3.Vec{X: 10, Y: -3})
			Expect(a.Force()).To(Equal(r3.Vec{X: 10, Y: -3}))

			Expect(physics.Integrate(a, 0.5)).To(Succeed())
			Expect(a.Position()).To(Equal(r3.Vec{X: -1, Y: 4}))
			Expect(a.Velocity()).To(Equal(r3.Vec{}))
			Expect(a.Force()).To(Equal(r3.Vec{}))
		})
	})

	Describe("Kick", func() {
		It("adds to the current velocity", func() {
			b, _ := physics.NewMass(0, 1, r3.Vec{})
			Expect(b.Kick(r3.Vec{X: -0.25})).To(Succeed())
			Expect(b.Kick(r3.Vec{Y: 1})).To(Succeed())
			Expect(b.Velocity()).To(Equal(r3.Vec{X: -0.25, Y: 1}))
		})
	})

	Describe("presentation", func() {
		It("derives radius from log10 of the mass", func() {
			Expect(physics.Radius(100)).To(BeNumerically("~", 0.5, 1e-12))
			Expect(physics.Radius(1)).To(Equal(physics.MinRadius))
		})

		It("formats labels with thousands separators", func() {
			Expect(physics.Label(12)).To(Equal("12 kg"))
			Expect(physics.Label(1500.7)).To(Equal("1,500 kg"))
			Expect(physics.Label(1234567)).To(Equal("1,234,567 kg"))
		})

		It("draws walls as a vertical segment around the position", func() {
			w := physics.NewWall(0, 0.5, r3.Vec{X: 3})
			bottom, top := physics.WallEnds(w)
			Expect(bottom).To(Equal(r3.Vec{X: 3, Y: -0.5}))
			Expect(top).To(Equal(r3.Vec{X: 3, Y: 0.5}))
		})
	})
})
