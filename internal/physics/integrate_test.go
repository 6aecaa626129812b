package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Integrate", func() {
	var b *physics.Body

	BeforeEach(func() {
		var err error
		b, err = physics.NewMass(0, 2, r3.Vec{X: 1})
		Expect(err).NotTo(HaveOccurred())
	})

	It("uses the updated velocity for the position step", func() {
		b.AddForce(r3.Vec{X: 4})
		Expect(physics.Integrate(b, 0.5)).To(Succeed())

		Expect(b.Velocity()).To(Equal(r3.Vec{X: 1}))
		Expect(b.Position()).To(Equal(r3.Vec{X: 1.5}))
	})

	It("leaves the accumulator exactly zero", func() {
		b.AddForce(r3.Vec{X: 0.1, Y: -7.3})
		Expect(physics.Integrate(b, 0.01)).To(Succeed())
		Expect(b.Force()).To(Equal(r3.Vec{}))
	})

	It("treats dt = 0 as a no-op on motion", func() {
		Expect(b.Kick(r3.Vec{Y: 3})).To(Succeed())
		b.AddForce(r3.Vec{X: 4})
		Expect(physics.Integrate(b, 0)).To(Succeed())

		Expect(b.Velocity()).To(Equal(r3.Vec{Y: 3}))
		Expect(b.Position()).To(Equal(r3.Vec{X: 1}))
		Expect(b.Force()).To(Equal(r3.Vec{}))
	})

	It("accepts a negative dt as a reverse step", func() {
		Expect(b.Kick(r3.Vec{X: 2})).To(Succeed())
		Expect(physics.Integrate(b, -0.5)).To(Succeed())
		Expect(b.Position()).To(Equal(r3.Vec{X: 0}))
	})

	It("rejects a zero-value movable body", func() {
		var zero physics.Body
		Expect(physics.Integrate(&zero, 0.1)).To(MatchError(dynamo.ErrInvalidState))
	})

	It("checks integrability without touching the body", func() {
		var zero physics.Body
		Expect(physics.CheckIntegrable(&zero)).To(MatchError(dynamo.ErrInvalidState))
		Expect(physics.CheckIntegrable(physics.NewAnchor(0, r3.Vec{}))).To(Succeed())

		b, err := physics.NewMass(1, 2, r3.Vec{X: 1})
		Expect(err).NotTo(HaveOccurred())
		b.AddForce(r3.Vec{X: 4})
		Expect(physics.CheckIntegrable(b)).To(Succeed())
		Expect(b.Force()).To(Equal(r3.Vec{X: 4}))
	})

	It("is exposed through the Integrator interface", func() {
		var integ physics.Integrator = physics.NewSemiImplicitEuler()
		b.AddForce(r3.Vec{X: 4})
		Expect(integ.Integrate(b, 0.5)).To(Succeed())
		Expect(b.Velocity().X).To(Equal(1.0))
	})

	Describe("ExplicitEuler", func() {
		It("moves with the velocity from before the force", func() {
			Expect(b.Kick(r3.Vec{X: 1})).To(Succeed())
			b.AddForce(r3.Vec{X: 4})
			Expect(physics.NewExplicitEuler().Integrate(b, 0.5)).To(Succeed())

			Expect(b.Position()).To(Equal(r3.Vec{X: 1.5}))
			Expect(b.Velocity()).To(Equal(r3.Vec{X: 2}))
			Expect(b.Force()).To(Equal(r3.Vec{}))
		})

		It("only clears an anchor's accumulator", func() {
			a := physics.NewAnchor(1, r3.Vec{Y: 2})
			a.AddForce(r3.Vec{X: 3})
			Expect(physics.NewExplicitEuler().Integrate(a, 0.5)).To(Succeed())
			Expect(a.Position()).To(Equal(r3.Vec{Y: 2}))
			Expect(a.Force()).To(Equal(r3.Vec{}))
		})
	})
})
