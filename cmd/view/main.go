// Interactive particle viewer - orbits a camera around the mesh while the
// engine runs, with sliders for the live stepper parameters.
//
// Usage: go run ./cmd/view [-config path] [-seed n]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meshflow/config"
	"github.com/pthm-cable/meshflow/engine"
	"github.com/pthm-cable/meshflow/field"
	"github.com/pthm-cable/meshflow/mesh"
)

const panelWidth = 260

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	m := mesh.Icosphere(cfg.Mesh.Subdivisions, cfg.Mesh.Radius)
	frames, err := mesh.BuildFrames(m)
	if err != nil {
		slog.Error("failed to build frames", "error", err)
		os.Exit(1)
	}
	sampler := field.NewNoiseField(frames, cfg.Field.Noise, rngSeed)

	policy, err := engine.ParseBoundaryPolicy(cfg.Spawn.BoundaryPolicy)
	if err != nil {
		slog.Error("invalid boundary policy", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(m, sampler, engine.ParamsFromConfig(cfg), engine.Options{
		Mode:           field.ModeVelocity,
		PoolSize:       cfg.Particles.Count,
		Seed:           rngSeed,
		BoundaryPolicy: policy,
		SpawnAttempts:  cfg.Spawn.MaxAttempts,
	})
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "meshflow")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	camera := rl.Camera3D{
		Position:   rl.NewVector3(2.6, 1.8, 2.6),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	edges := meshEdges(m)
	paused := false

	for !rl.WindowShouldClose() {
		rl.UpdateCamera(&camera, rl.CameraOrbital)

		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if !paused {
			eng.Step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(16, 18, 24, 255))

		rl.BeginMode3D(camera)
		for _, e := range edges {
			rl.DrawLine3D(e[0], e[1], rl.NewColor(55, 60, 72, 255))
		}
		params := eng.Params()
		for i := range eng.Pool().Particles {
			p := &eng.Pool().Particles[i]
			pos := m.FacePoint(p.Face, p.Bary)
			rl.DrawPoint3D(
				rl.NewVector3(float32(pos.X), float32(pos.Y), float32(pos.Z)),
				speedColor(p.Speed, params.MaxSpeed),
			)
		}
		rl.EndMode3D()

		drawPanel(eng)
		rl.EndDrawing()
	}
}

// drawPanel renders the parameter sliders and applies any changes.
func drawPanel(eng *engine.Engine) {
	params := eng.Params()
	x := float32(10)
	y := float32(10)

	rl.DrawText("Stepper Parameters", int32(x), int32(y), 18, rl.RayWhite)
	y += 30

	y = paramSlider(x, y, "Damping", &params.Damping, 0, 0.2)
	y = paramSlider(x, y, "Max speed", &params.MaxSpeed, 0.1, 4.0)
	y = paramSlider(x, y, "Time scale", &params.TimeScale, 0.1, 4.0)

	rl.DrawText(fmt.Sprintf("tick %d", eng.Tick()), int32(x), int32(y), 14, rl.Gray)
	rl.DrawText("space: pause", int32(x), int32(y)+18, 14, rl.Gray)

	eng.SetParams(params)
}

// paramSlider draws one labeled slider and writes the result back.
func paramSlider(x, y float32, label string, value *float64, minV, maxV float32) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: panelWidth - 80, Height: 18},
		"", "",
		float32(*value), minV, maxV,
	)
	rl.DrawText(fmt.Sprintf("%.2f", v), int32(x+panelWidth-70), int32(y), 14, rl.RayWhite)
	*value = float64(v)
	return y + 28
}

// speedColor maps a particle speed onto a cold-to-hot ramp.
func speedColor(speed, maxSpeed float64) rl.Color {
	t := float32(0)
	if maxSpeed > 0 {
		t = float32(speed / maxSpeed)
	}
	if t > 1 {
		t = 1
	}
	return rl.NewColor(
		uint8(80+175*t),
		uint8(160-60*t),
		uint8(255-200*t),
		255,
	)
}

// meshEdges collects each unique edge once for wireframe drawing.
func meshEdges(m *mesh.Mesh) [][2]rl.Vector3 {
	seen := make(map[[2]int32]bool)
	var edges [][2]rl.Vector3
	for fi := range m.Faces {
		for e := 0; e < 3; e++ {
			a, b := m.EdgeVertices(mesh.FaceID(fi), e)
			key := [2]int32{a, b}
			if a > b {
				key = [2]int32{b, a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			va := m.Vertices[a]
			vb := m.Vertices[b]
			edges = append(edges, [2]rl.Vector3{
				rl.NewVector3(float32(va.X), float32(va.Y), float32(va.Z)),
				rl.NewVector3(float32(vb.X), float32(vb.Y), float32(vb.Z)),
			})
		}
	}
	return edges
}
