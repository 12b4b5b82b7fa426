package stat

// Common stat names recorded by the tracker.
const (
	NameTwoPoint         = "2PT"
	NameThreePoint       = "3PT"
	NameFreeThrow        = "FT"
	NameOffensiveRebound = "OREB"
	NameDefensiveRebound = "DREB"
	NameAssist           = "AST"
	NameSteal            = "STL"
	NameBlock            = "BLK"
	NameTurnover         = "TO"
	NameFoul             = "PF"
	NameGoal             = "GOAL"
	NameShotOnGoal       = "SOG"
	NameSave             = "SAVE"
)

// Definition describes how a stat is recorded.
type Definition struct {
	Name       string
	PointValue int
	Mode       Mode
}

var definitions = map[string]Definition{
	NameTwoPoint:         {Name: NameTwoPoint, PointValue: 2, Mode: ModeAttempt},
	NameThreePoint:       {Name: NameThreePoint, PointValue: 3, Mode: ModeAttempt},
	NameFreeThrow:        {Name: NameFreeThrow, PointValue: 1, Mode: ModeAttempt},
	NameOffensiveRebound: {Name: NameOffensiveRebound, Mode: ModeTally},
	NameDefensiveRebound: {Name: NameDefensiveRebound, Mode: ModeTally},
	NameAssist:           {Name: NameAssist, Mode: ModeTally},
	NameSteal:            {Name: NameSteal, Mode: ModeTally},
	NameBlock:            {Name: NameBlock, Mode: ModeTally},
	NameTurnover:         {Name: NameTurnover, Mode: ModeTally},
	NameFoul:             {Name: NameFoul, Mode: ModeTally},
	NameGoal:             {Name: NameGoal, PointValue: 1, Mode: ModeAttempt},
	NameShotOnGoal:       {Name: NameShotOnGoal, Mode: ModeTally},
	NameSave:             {Name: NameSave, Mode: ModeTally},
}

// Lookup returns the built-in definition for name. Unknown names are still
// recordable; callers then supply the point value themselves.
func Lookup(name string) (Definition, bool) {
	def, ok := definitions[name]
	return def, ok
}

// ReboundNames lists the stats that count as rebounds.
var ReboundNames = []string{NameOffensiveRebound, NameDefensiveRebound}
