package quiz

var defaultQuestions = []Question{
	{
		Text:       "Which agent has the ability called 'Resurrection'?",
		Options:    []string{"Sage", "Phoenix", "Reyna", "Skye"},
		Correct:    0,
		Difficulty: Easy,
		Category:   "agents",
	},
	{
		Text:       "What is the maximum number of players in a match?",
		Options:    []string{"8", "10", "12", "16"},
		Correct:    1,
		Difficulty: Easy,
		Category:   "gameplay",
	},
	{
		Text:       "Which map features a teleporter on site A?",
		Options:    []string{"Haven", "Bind", "Split", "Ascent"},
		Correct:    1,
		Difficulty: Easy,
		Category:   "maps",
	},
	{
		Text:       "What is the default pistol for all agents?",
		Options:    []string{"Sheriff", "Classic", "Ghost", "Frenzy"},
		Correct:    1,
		Difficulty: Easy,
		Category:   "weapons",
	},
	{
		Text:       "Which agent can create smokes?",
		Options:    []string{"Jett", "Raze", "Omen", "Breach"},
		Correct:    2,
		Difficulty: Easy,
		Category:   "agents",
	},
	{
		Text:       "How many rounds does a team need to win the match?",
		Options:    []string{"11", "12", "13", "15"},
		Correct:    2,
		Difficulty: Easy,
		Category:   "gameplay",
	},
	{
		Text:       "Which weapon is known as the 'Op'?",
		Options:    []string{"Marshal", "Operator", "Guardian", "Vandal"},
		Correct:    1,
		Difficulty: Easy,
		Category:   "weapons",
	},
	{
		Text:       "What does 'eco' mean?",
		Options:    []string{"Economic round", "Easy carry on", "Explosive combat only", "Enemy contact outside"},
		Correct:    0,
		Difficulty: Easy,
		Category:   "gameplay",
	},
	{
		Text:       "Which agent has the ultimate ability 'Showstopper'?",
		Options:    []string{"Raze", "Phoenix", "Jett", "Reyna"},
		Correct:    0,
		Difficulty: Easy,
		Category:   "agents",
	},
	{
		Text:       "What is the spike plant time?",
		Options:    []string{"3 seconds", "4 seconds", "5 seconds", "6 seconds"},
		Correct:    1,
		Difficulty: Medium,
		Category:   "gameplay",
	},
	{
		Text:       "Which map has three sites?",
		Options:    []string{"Ascent", "Haven", "Split", "Bind"},
		Correct:    1,
		Difficulty: Medium,
		Category:   "maps",
	},
	{
		Text:       "What currency is used to buy weapons?",
		Options:    []string{"VP", "Credits", "Creds", "Points"},
		Correct:    1,
		Difficulty: Medium,
		Category:   "gameplay",
	},
}
