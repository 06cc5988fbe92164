package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules defines the deck global in L. Emitted lines are appended
// to out.
func (r *Runner) registerModules(L *lua.LState, out *[]string) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"draw":    r.luaDraw,
		"resolve": r.luaResolve,
		"weight":  r.luaWeight,
		"roll":    r.luaRoll,
		"entries": r.luaEntries,
		"names":   r.luaNames,
		"emit": func(L *lua.LState) int {
			parts := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			*out = append(*out, strings.Join(parts, " "))
			return 0
		},
	})

	logTbl := L.NewTable()
	for level, fn := range map[string]func(string, ...zap.Field){
		"debug": r.logger.Debug,
		"info":  r.logger.Info,
		"warn":  r.logger.Warn,
		"error": r.logger.Error,
	} {
		logTbl.RawSetString(level, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	mod.RawSetString("log", logTbl)

	L.SetGlobal("deck", mod)
}

// luaDraw: deck.draw(name) -> text | nil, message
func (r *Runner) luaDraw(L *lua.LState) int {
	res, err := r.engine.Draw(r.store, L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(res.Text))
	return 1
}

// luaResolve: deck.resolve(text) -> text | nil, message
func (r *Runner) luaResolve(L *lua.LState) int {
	text, _, err := r.engine.Resolve(r.store, L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(text))
	return 1
}

// luaWeight: deck.weight(expr) -> integer weight
func (r *Runner) luaWeight(L *lua.LState) int {
	L.Push(lua.LNumber(r.engine.Weight(L.CheckString(1))))
	return 1
}

// luaRoll: deck.roll(expr) -> {total, dice, modifier, detail}
func (r *Runner) luaRoll(L *lua.LState) int {
	res, err := r.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	sum := 0
	for _, d := range res.Dice {
		sum += d
	}
	t := L.NewTable()
	t.RawSetString("total", lua.LNumber(res.Total()))
	t.RawSetString("dice", lua.LNumber(sum))
	t.RawSetString("modifier", lua.LNumber(res.Modifier))
	t.RawSetString("detail", lua.LString(res.String()))
	L.Push(t)
	return 1
}

// luaEntries: deck.entries(name) -> {raw...} | nil
func (r *Runner) luaEntries(L *lua.LState) int {
	entries, ok := r.store.Entries(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.CreateTable(len(entries), 0)
	for _, e := range entries {
		t.Append(lua.LString(e))
	}
	L.Push(t)
	return 1
}

// luaNames: deck.names() -> {name...}
func (r *Runner) luaNames(L *lua.LState) int {
	names := r.store.Names()
	t := L.CreateTable(len(names), 0)
	for _, n := range names {
		t.Append(lua.LString(n))
	}
	L.Push(t)
	return 1
}
