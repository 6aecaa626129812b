// Package physics is the mass-spring kernel: bodies, springs and the
// semi-implicit Euler step that advances them.
//
//   - [Body]: a movable point mass or a fixed anchor (a [Wall] is an anchor
//     with a visual height)
//   - [Spring]: Hooke's law between two bodies, plus the incremental
//     [Deformation] used to reshape a drawn spring
//   - [Integrate]: v += F/m·dt, x += v·dt, F = 0
//
// The package never sequences a tick on its own. Callers apply every spring
// first and integrate every body afterwards; sim.World does exactly that.
//
// # Example
//
//	a, _ := physics.NewMass(0, 3, r3.Vec{X: -1})
//	b, _ := physics.NewMass(1, 1.5, r3.Vec{X: 1})
//	s, _ := physics.NewSpring(2.0, a, b)
//	s.Apply()
//	physics.Integrate(a, dt)
//	physics.Integrate(b, dt)
package physics
