package stdlib

import "github.com/qi-lang/qi/core"

// Register adds every stdlib builtin to r and defines them into env,
// mirroring the pattern core.NewRegistry/DefineAll already use for the
// builtin core table (spec §1: stdlib modules register through the
// same call protocol as the core's own builtins, nothing more).
func Register(r *core.Registry, env *core.Env) {
	registerStr(r)
	registerPath(r)
	registerHostExpr(r)

	r.DefineAll(env)
}
