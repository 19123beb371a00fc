package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// World { title = "...", seed = 42, ... }
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		coll.world = L.CheckTable(1)
		return 0
	}))

	// Spell(133) { name = "Fireball", ... }: curried on the spell ID.
	L.SetGlobal("Spell", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		if id <= 0 {
			L.ArgError(1, "spell id must be positive")
		}
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.spells = append(coll.spells, rawSpell{id: uint32(id), table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Unit "name" { ... }
	L.SetGlobal("Unit", namedConstructor(L, &coll.units))

	// GameObject "name" { ... }
	L.SetGlobal("GameObject", namedConstructor(L, &coll.gameObjects))

	// Item "name" { ... }
	L.SetGlobal("Item", namedConstructor(L, &coll.items))

	// ScriptTarget { spell = 1, type = "creature", entry = 500 }
	L.SetGlobal("ScriptTarget", L.NewFunction(func(L *lua.LState) int {
		coll.scripts = append(coll.scripts, L.CheckTable(1))
		return 0
	}))

	// TeleportPosition { spell = 1, map_id = 0, pos = Pos(1, 2, 3) }
	L.SetGlobal("TeleportPosition", L.NewFunction(func(L *lua.LState) int {
		coll.teleports = append(coll.teleports, L.CheckTable(1))
		return 0
	}))

	// LinkedSpell(source, cast). A negative cast removes that aura.
	L.SetGlobal("LinkedSpell", L.NewFunction(func(L *lua.LState) int {
		coll.links = append(coll.links, rawLink{
			source: uint32(L.CheckInt(1)),
			cast:   int32(L.CheckInt(2)),
			line:   L.Where(1),
		})
		return 0
	}))
}

// namedConstructor returns a curried constructor: Name "id" { ... }.
func namedConstructor(L *lua.LState, into *[]rawNamed) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*into = append(*into, rawNamed{name: name, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	})
}

func registerHelpers(L *lua.LState) {
	// Pos(x, y, z, o): z and o default to 0.
	L.SetGlobal("Pos", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("x", L.CheckNumber(1))
		tbl.RawSetString("y", L.CheckNumber(2))
		tbl.RawSetString("z", L.OptNumber(3, 0))
		tbl.RawSetString("o", L.OptNumber(4, 0))
		L.Push(tbl)
		return 1
	}))

	// Reagent(item, count)
	L.SetGlobal("Reagent", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("item", L.CheckNumber(1))
		tbl.RawSetString("count", L.OptNumber(2, 1))
		L.Push(tbl)
		return 1
	}))

	// Trigger(spell, chance)
	L.SetGlobal("Trigger", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("spell", L.CheckNumber(1))
		tbl.RawSetString("chance", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Wall(Pos(...), Pos(...))
	L.SetGlobal("Wall", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("a", L.CheckTable(1))
		tbl.RawSetString("b", L.CheckTable(2))
		L.Push(tbl)
		return 1
	}))
}
