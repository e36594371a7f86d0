package cubesim

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// A Module wires resources and systems into the app at build time.
type Module interface {
	Install(app *App, cmd *Commands)
}

// App holds the staged system schedule and the typed resource table.
// Unlike a free-running game loop, the app is tick-driven: the external
// update loop calls Step once per frame and one full tick executes to
// completion before the call returns.
type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Step executes every stage in order, and within a stage every system in
// registration order. This is the only code path that mutates simulation
// state.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves each parameter of the system function against the
// resource table (or injects *Commands) and invokes it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve system dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

// ResourceOf returns the resource of type T, panicking when it was never
// installed. Handy for drivers and tests that need to reach into the app.
func ResourceOf[T any](app *App) *T {
	var zero T
	resource, ok := app.resources[reflect.TypeOf(zero)]
	if !ok {
		panic(fmt.Sprintf("%T is not in resources", zero))
	}
	return resource.(*T)
}
