// Package viz draws mass-spring worlds in the terminal.
//
//   - [Canvas]: braille pixel canvas with a world-space [Viewport]
//   - [SpringShape]: zig-zag spring drawing kept in step with its spring
//   - [Model]: live Bubble Tea view of a running scene
//   - [Picker]: scene menu that opens a [Model]
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	N      - Single step while paused
//	R      - Rebuild the scene
//	Tab    - Select the next mass
//	Arrows - Kick the selected mass
//	+/-    - Double/halve steps per frame
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
