package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"How do I write a loop in Python", Programming},
		{"open youtube", Web},
		{"search wikipedia about black holes", Web},
		{"good morning", Friend},
		{"my name is ada", Friend},
		{"switch to offline mode", System},
		{"status", System},
		{"what is the meaning of life", General},
		{"", General},
	}
	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// every utterance mixes a programming keyword with a lower-priority one
	mixed := []string{
		"hey, how do I fix this error",
		"hello friend, my python code is broken",
		"I'm so tired of this bug",
		"search google for a sorting algorithm",
		"open the debug settings",
		"switch language to javascript",
	}
	for _, u := range mixed {
		if got := Classify(u); got != Programming {
			t.Errorf("Classify(%q) = %s, want programming", u, got)
		}
	}

	if got := Classify("hey, open github"); got != Web {
		t.Errorf("web must beat friend, got %s", got)
	}
	if got := Classify("hello, show me the status"); got != Friend {
		t.Errorf("friend must beat system, got %s", got)
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	if Classify("OPEN YOUTUBE") != Web {
		t.Fatalf("upper-case utterance not classified")
	}
}

func TestContainsAnyWord(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"ok, bye!", true},
		{"time to quit", true},
		{"i'm quite sure", false},
		{"tell me about shutdowns", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ContainsAnyWord(c.s, "bye", "quit", "shutdown"); got != c.want {
			t.Errorf("ContainsAnyWord(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}
