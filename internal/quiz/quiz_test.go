package quiz

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultBank(t *testing.T) {
	bank := Default()
	if bank.Len() == 0 {
		t.Fatal("default bank is empty")
	}

	for n := 1; n <= bank.Len(); n++ {
		q, ok := bank.Question(n)
		if !ok {
			t.Fatalf("question %d missing", n)
		}
		if strings.TrimSpace(q.Text) == "" {
			t.Errorf("question %d has empty text", n)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options, want 4", n, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			t.Errorf("question %d correct index %d out of range", n, q.Correct)
		}
	}
}

func TestQuestionBounds(t *testing.T) {
	bank := Default()

	if _, ok := bank.Question(0); ok {
		t.Error("question 0 should not exist")
	}
	if _, ok := bank.Question(bank.Len() + 1); ok {
		t.Error("question past the end should not exist")
	}
	if bank.IsCorrect(0, 0) {
		t.Error("question 0 should never be correct")
	}
}

func TestCorrectIndexNotSerialized(t *testing.T) {
	q, _ := Default().Question(1)
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "correct") {
		t.Errorf("serialized question leaks the correct answer: %s", data)
	}
}
