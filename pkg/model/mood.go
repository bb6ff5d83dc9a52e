package model

// Mood is one of the agent's fixed emotional framings. The persona
// machine holds exactly one current mood for the whole process.
type Mood string

const (
	MoodContemplative Mood = "contemplative"
	MoodNostalgic     Mood = "nostalgic"
	MoodWise          Mood = "wise"
	MoodMelancholic   Mood = "melancholic"
	MoodExcited       Mood = "excited"
	MoodProtective    Mood = "protective"
	MoodMystical      Mood = "mystical"
	MoodTeaching      Mood = "teaching"
	MoodSorrowful     Mood = "sorrowful"
	MoodJoyful        Mood = "joyful"
	MoodCurious       Mood = "curious"
	MoodProud         Mood = "proud"
	MoodAncient       Mood = "ancient"
	MoodPeaceful      Mood = "peaceful"
)

// MoodState is a snapshot of the persona machine's position
type MoodState struct {
	Mood              Mood    `json:"mood"`
	Intensity         float64 `json:"intensity"`
	RemainingDuration int     `json:"remaining_duration"`
}
