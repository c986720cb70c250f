// Package scenario runs scripted skirmishes written in a small Lua DSL.
//
// A script declares combatants by callsign, fires strikes between them with
// fixed seeds, and attaches expectations (damage bounds, counters, kills,
// remaining HP). The runner executes the steps against the combat engine and
// reports the first violated expectation. Scripts are deterministic: every
// strike resolves off its declared seed, so a scenario either always passes
// or always fails.
//
//	local scene = Scenario.new("tank duel")
//	scene:combatant("red", {unit = "tank", hp = 9.5, officer = "max", terrain = "city"})
//	scene:combatant("blu", {unit = "tank", officer = "kanbei", terrain = "mountain"})
//	scene:strike({attacker = "red", defender = "blu", seed = 4242}):expect({counter = true})
//	scene:expect_alive("blu")
//	return scene
package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const (
	scenarioTypeName    = "scenario"
	strikeCheckTypeName = "strike_check"
)

// Scenario is a parsed skirmish script: a name and an ordered step list.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted action with its raw arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// strikeCheck lets a script attach expectations to the strike it came from.
type strikeCheck struct {
	scenario  *Scenario
	stepIndex int
}

// LoadScenarioFromFile evaluates a Lua script and returns the scenario it
// built. The script must return the Scenario userdata.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerStrikeCheckType(state)
	registerScenarioConstructor(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerStrikeCheckType(state *lua.State) {
	lua.NewMetaTable(state, strikeCheckTypeName)
	state.NewTable()
	lua.SetFunctions(state, strikeCheckMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "combatant", Function: scenarioCombatant},
	{Name: "strike", Function: scenarioStrike},
	{Name: "expect_hp", Function: scenarioExpectHP},
	{Name: "expect_alive", Function: scenarioExpectAlive},
	{Name: "expect_destroyed", Function: scenarioExpectDestroyed},
}

func scenarioCombatant(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	if strings.TrimSpace(name) == "" {
		lua.Errorf(state, "combatant name is required")
		return 0
	}
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	if unit, _ := data["unit"].(string); strings.TrimSpace(unit) == "" {
		lua.Errorf(state, "combatant unit is required")
		return 0
	}
	data["name"] = name
	appendStep(scenario, "combatant", data)
	return 0
}

func scenarioStrike(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	stepIndex := appendStep(scenario, "strike", data)
	state.PushUserData(&strikeCheck{scenario: scenario, stepIndex: stepIndex})
	lua.SetMetaTableNamed(state, strikeCheckTypeName)
	return 1
}

func scenarioExpectHP(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["target"] = name
	appendStep(scenario, "expect_hp", data)
	return 0
}

func scenarioExpectAlive(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "expect_alive", map[string]any{"target": name})
	return 0
}

func scenarioExpectDestroyed(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "expect_destroyed", map[string]any{"target": name})
	return 0
}

var strikeCheckMethods = []lua.RegistryFunction{
	{Name: "expect", Function: strikeCheckExpect},
}

// strikeCheckExpect folds expectation keys into the originating strike step
// under an expect_ prefix.
func strikeCheckExpect(state *lua.State) int {
	ud := lua.CheckUserData(state, 1, strikeCheckTypeName)
	check, ok := ud.(*strikeCheck)
	if !ok || check == nil {
		lua.Errorf(state, "invalid strike check")
		return 0
	}
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	if check.stepIndex < 0 || check.stepIndex >= len(check.scenario.Steps) {
		lua.Errorf(state, "strike check is out of range")
		return 0
	}
	step := &check.scenario.Steps[check.stepIndex]
	if step.Args == nil {
		step.Args = map[string]any{}
	}
	for key, value := range data {
		step.Args["expect_"+key] = value
	}
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
