// Package quiz defines the question bank consumed by the game engine.
package quiz

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type Question struct {
	Text       string     `json:"question"`
	Options    []string   `json:"options"`
	Correct    int        `json:"-"`
	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	AudioURL   string     `json:"audioUrl,omitempty"`
}

// Bank is an ordered set of questions. Question numbers are 1-based;
// 0 means the game has not started.
type Bank struct {
	questions []Question
}

func NewBank(questions []Question) *Bank {
	return &Bank{questions: questions}
}

// Default returns the built-in question bank.
func Default() *Bank {
	return NewBank(defaultQuestions)
}

func (b *Bank) Len() int {
	return len(b.questions)
}

// Question returns the question for a 1-based number.
func (b *Bank) Question(number int) (Question, bool) {
	if number < 1 || number > len(b.questions) {
		return Question{}, false
	}
	return b.questions[number-1], true
}

// IsCorrect reports whether answerIndex answers question number correctly.
// Unknown question numbers are never correct.
func (b *Bank) IsCorrect(number, answerIndex int) bool {
	q, ok := b.Question(number)
	return ok && answerIndex == q.Correct
}
