package tinylisp

// installCoreBuiltins wires every builtin and special form this
// interpreter ships with directly into a fresh Interpreter's symbol
// table, called once from NewInterpreter before any user code runs.
func installCoreBuiltins(in *Interpreter) {
	installSpecialForms(in)
	installArithBuiltins(in)
	installListBuiltins(in)
	installIOBuiltins(in)
}
