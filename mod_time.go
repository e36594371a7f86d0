package cubesim

// Clock counts ticks. The engine runs on a fixed timestep carried by
// PhysicsParameters; there is no wall-clock delta, one Step is one tick.
type Clock struct {
	Tick uint64
}

type TimeModule struct{}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Clock{})
	cmd.UseSystem(System(clockSystem).InStage(Prelude))
}

func clockSystem(clock *Clock) {
	clock.Tick++
}
