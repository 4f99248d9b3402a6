package appcontext

const (
	// EnvServer runs the engine together with the host API.
	EnvServer Env = iota
	// EnvWatch runs the engine alone and renders to the terminal.
	EnvWatch
	// EnvCLI runs one-shot commands; channels are never scheduled.
	EnvCLI
)

type Env int

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}
