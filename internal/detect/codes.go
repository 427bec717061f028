package detect

// Def maps an outcome code to its moment taxonomy entry.
type Def struct {
	ID       string
	Category Category
	Register Register
	Priority int
	// Detection marks explicit "you have been seen" moments. A turn
	// that produced one suppresses the near-miss detector so an actual
	// detection is not double-counted as a near miss.
	Detection bool
}

// SchemaFumble is emitted for any adjudication carrying the
// schema-fallback indicator, regardless of validity or code.
var SchemaFumble = Def{
	ID:       "schema_fumble",
	Category: CategorySystem,
	Register: RegisterFailure,
	Priority: 95,
}

// InvalidCodes maps invalid-attempt outcome codes to moment
// definitions. Unrecognized codes yield no candidate - the engine is
// free to grow its code namespace ahead of us.
var InvalidCodes = map[string]Def{
	"blocked_by_locked_door": {ID: "locked_door", Category: CategoryNavigation, Register: RegisterFailure, Priority: 80},
	"no_such_exit":           {ID: "wrong_turn", Category: CategoryNavigation, Register: RegisterFailure, Priority: 40},
	"wall_collision":         {ID: "wrong_turn", Category: CategoryNavigation, Register: RegisterFailure, Priority: 40},
	"target_out_of_range":    {ID: "overreach", Category: CategoryStealth, Register: RegisterFailure, Priority: 45},
	"item_not_here":          {ID: "fumbled_pickup", Category: CategoryObjective, Register: RegisterFailure, Priority: 35},
	"terminal_busy":          {ID: "terminal_rebuffed", Category: CategoryObjective, Register: RegisterFailure, Priority: 50},
	"insufficient_charge":    {ID: "tool_dead", Category: CategoryEquipment, Register: RegisterFailure, Priority: 55},
	"guard_blocking":         {ID: "guard_blocked", Category: CategoryStealth, Register: RegisterTension, Priority: 65},
	"already_hacked":         {ID: "redundant_hack", Category: CategoryObjective, Register: RegisterFailure, Priority: 30},
}

// ResultCodes maps successful-result outcome codes to moment
// definitions. A separate namespace from InvalidCodes: the same string
// could legally mean different things in each.
var ResultCodes = map[string]Def{
	"hack_complete":      {ID: "terminal_hacked", Category: CategoryObjective, Register: RegisterProgress, Priority: 60},
	"hack_started":       {ID: "hack_in_progress", Category: CategoryObjective, Register: RegisterProgress, Priority: 35},
	"item_picked_up":     {ID: "loot_secured", Category: CategoryObjective, Register: RegisterProgress, Priority: 45},
	"door_unlocked":      {ID: "door_unlocked", Category: CategoryNavigation, Register: RegisterProgress, Priority: 50},
	"agent_spotted":      {ID: "spotted", Category: CategoryStealth, Register: RegisterTension, Priority: 85, Detection: true},
	"agent_escaped":      {ID: "clean_getaway", Category: CategoryStealth, Register: RegisterProgress, Priority: 70},
	"distraction_placed": {ID: "distraction_set", Category: CategoryStealth, Register: RegisterProgress, Priority: 40},
	"guard_lured":        {ID: "guard_lured", Category: CategoryStealth, Register: RegisterProgress, Priority: 55},
	"camera_disabled":    {ID: "camera_dark", Category: CategoryStealth, Register: RegisterProgress, Priority: 45},
	"alarm_triggered":    {ID: "alarm_raised", Category: CategoryStealth, Register: RegisterTension, Priority: 90},
}

// Stateful detector taxonomy entries.
var (
	DefGuardClosing = Def{ID: "guard_closing", Category: CategoryStealth, Register: RegisterTension, Priority: 75}
	DefStall        = Def{ID: "stalled_objective", Category: CategoryObjective, Register: RegisterTension, Priority: 45}
	DefNoiseCreep   = Def{ID: "noise_creep", Category: CategoryStealth, Register: RegisterTension, Priority: 55}
	DefNearMiss     = Def{ID: "near_miss", Category: CategoryStealth, Register: RegisterTension, Priority: 70}
)
