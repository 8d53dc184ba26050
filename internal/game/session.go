package game

import (
	"math"
	"voxmap/internal/input"
	"voxmap/internal/minimap"
	"voxmap/internal/profiling"
	"voxmap/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the free-flying camera the minimap follows.
type Viewer struct {
	Position mgl32.Vec3
	// Yaw in degrees; 0 looks towards +Z, 90 towards -X.
	Yaw float32
}

// Forward returns the horizontal look direction.
func (v *Viewer) Forward() mgl32.Vec3 {
	rad := float64(mgl32.DegToRad(v.Yaw))
	return mgl32.Vec3{float32(-math.Sin(rad)), 0, float32(math.Cos(rad))}
}

// Right returns the horizontal direction to the viewer's right.
func (v *Viewer) Right() mgl32.Vec3 {
	f := v.Forward()
	return mgl32.Vec3{-f.Z(), 0, f.X()}
}

// NodePos returns the node the viewer is in.
func (v *Viewer) NodePos() world.Pos {
	return world.Pos{
		X: int(math.Floor(float64(v.Position.X()))),
		Y: int(math.Floor(float64(v.Position.Y()))),
		Z: int(math.Floor(float64(v.Position.Z()))),
	}
}

// Session moves the viewer from input and keeps the world and the minimap
// in step with it.
type Session struct {
	Viewer   Viewer
	Minimap  *minimap.Minimap
	Streamer *Streamer
	Input    *input.InputManager

	// Nodes per second and degrees per second.
	Speed     float32
	TurnSpeed float32

	// OnModeChanged runs after the minimap mode or shape changed.
	OnModeChanged func(mode minimap.ModeDef, round bool)

	markers []mgl32.Vec3
}

// NewSession places the viewer above the terrain at the origin.
func NewSession(m *minimap.Minimap, s *Streamer, im *input.InputManager) *Session {
	ground := s.Generator.HeightAt(0, 0)
	sess := &Session{
		Viewer:    Viewer{Position: mgl32.Vec3{0.5, float32(ground + 2), 0.5}},
		Minimap:   m,
		Streamer:  s,
		Input:     im,
		Speed:     20,
		TurnSpeed: 90,
	}
	m.SetPos(sess.Viewer.NodePos())
	return sess
}

// Update advances the session by dt seconds.
func (s *Session) Update(dt float64) {
	defer profiling.Track("session.Update")()
	s.move(float32(dt))
	s.handleActions()

	s.Minimap.SetPos(s.Viewer.NodePos())
	s.Minimap.SetAngle(s.Viewer.Yaw)
	s.Streamer.Step(s.Viewer.NodePos())
}

func (s *Session) move(dt float32) {
	im := s.Input
	if im.IsActive(input.ActionTurnLeft) {
		s.Viewer.Yaw += s.TurnSpeed * dt
	}
	if im.IsActive(input.ActionTurnRight) {
		s.Viewer.Yaw -= s.TurnSpeed * dt
	}
	s.Viewer.Yaw = float32(math.Mod(float64(s.Viewer.Yaw), 360))
	if s.Viewer.Yaw < 0 {
		s.Viewer.Yaw += 360
	}

	var dir mgl32.Vec3
	if im.IsActive(input.ActionMoveForward) {
		dir = dir.Add(s.Viewer.Forward())
	}
	if im.IsActive(input.ActionMoveBackward) {
		dir = dir.Sub(s.Viewer.Forward())
	}
	if im.IsActive(input.ActionMoveRight) {
		dir = dir.Add(s.Viewer.Right())
	}
	if im.IsActive(input.ActionMoveLeft) {
		dir = dir.Sub(s.Viewer.Right())
	}
	if im.IsActive(input.ActionMoveUp) {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if im.IsActive(input.ActionMoveDown) {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	if dir.Len() > 0 {
		s.Viewer.Position = s.Viewer.Position.Add(dir.Normalize().Mul(s.Speed * dt))
	}
}

func (s *Session) handleActions() {
	im := s.Input
	changed := false
	if im.JustPressed(input.ActionMinimapNextMode) {
		// Shift+F9 flips the shape like the dedicated key
		if im.IsActive(input.ActionModShift) {
			s.Minimap.ToggleShape()
		} else {
			s.Minimap.NextMode()
		}
		changed = true
	}
	if im.JustPressed(input.ActionMinimapToggleShape) {
		s.Minimap.ToggleShape()
		changed = true
	}
	if changed && s.OnModeChanged != nil {
		s.OnModeChanged(s.Minimap.ModeDef(), s.Minimap.Shape())
	}

	if im.JustPressed(input.ActionAddMarker) {
		s.markers = append(s.markers, s.Viewer.Position)
		s.Minimap.AddMarker(s.Viewer.Position)
	}
	if im.JustPressed(input.ActionRemoveMarker) && len(s.markers) > 0 {
		last := s.markers[len(s.markers)-1]
		s.markers = s.markers[:len(s.markers)-1]
		s.Minimap.RemoveMarker(last)
	}
}
