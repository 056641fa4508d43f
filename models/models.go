package models

// All lists every table the engine reads or writes, in migration order.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&RoutineCompletion{},
		&DailyProgress{},
		&UserStats{},
		&MilestoneDefinition{},
		&MilestoneProgress{},
		&UserMilestone{},
		&PainCheckIn{},
		&CircleMember{},
	}
}
