package memory

import "time"

// State is the persisted memory document. It is read and written as a whole.
type State struct {
	UserInfo             UserInfo              `json:"user_info"`
	ConversationHistory  []Conversation        `json:"conversation_history"`
	LearnedFacts         map[string][]Fact     `json:"learned_facts"`
	ProgrammingKnowledge map[string]*Knowledge `json:"programming_knowledge"`
	FriendshipData       FriendshipData        `json:"friendship_data"`
	SystemData           SystemData            `json:"system_data"`
}

type UserInfo struct {
	Name                 string            `json:"name"`
	Preferences          map[string]string `json:"preferences"`
	ProgrammingLanguages []string          `json:"programming_languages"`
}

// Conversation is one user/assistant exchange.
type Conversation struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Type      string    `json:"type"`
}

type Fact struct {
	Fact      string    `json:"fact"`
	Timestamp time.Time `json:"timestamp"`
}

// Knowledge is what has been learned about one programming language.
type Knowledge struct {
	ErrorsFixed     []FixedError `json:"errors_fixed"`
	ConceptsLearned []Concept    `json:"concepts_learned"`
}

type FixedError struct {
	Concept   string    `json:"concept"`
	Solution  string    `json:"solution"`
	Timestamp time.Time `json:"timestamp"`
}

type Concept struct {
	Concept   string    `json:"concept"`
	Timestamp time.Time `json:"timestamp"`
}

type FriendshipData struct {
	UserMood        string            `json:"user_mood"`
	FavoriteTopics  []string          `json:"favorite_topics"`
	PersonalDetails map[string]string `json:"personal_details"`
}

type SystemData struct {
	LastSession       time.Time `json:"last_session"`
	TotalInteractions int       `json:"total_interactions"`
}

var seededLanguages = []string{"python", "javascript", "java", "cpp"}

// NewState returns the empty structure used when nothing has been persisted yet.
func NewState() *State {
	st := &State{
		UserInfo: UserInfo{
			Preferences:          map[string]string{},
			ProgrammingLanguages: []string{},
		},
		ConversationHistory:  []Conversation{},
		LearnedFacts:         map[string][]Fact{},
		ProgrammingKnowledge: map[string]*Knowledge{},
		FriendshipData: FriendshipData{
			FavoriteTopics:  []string{},
			PersonalDetails: map[string]string{},
		},
	}
	for _, lang := range seededLanguages {
		st.ProgrammingKnowledge[lang] = emptyKnowledge()
	}
	return st
}

func emptyKnowledge() *Knowledge {
	return &Knowledge{ErrorsFixed: []FixedError{}, ConceptsLearned: []Concept{}}
}

// fill replaces nil containers left by partial or older documents.
func (s *State) fill() {
	if s.UserInfo.Preferences == nil {
		s.UserInfo.Preferences = map[string]string{}
	}
	if s.UserInfo.ProgrammingLanguages == nil {
		s.UserInfo.ProgrammingLanguages = []string{}
	}
	if s.ConversationHistory == nil {
		s.ConversationHistory = []Conversation{}
	}
	if s.LearnedFacts == nil {
		s.LearnedFacts = map[string][]Fact{}
	}
	if s.ProgrammingKnowledge == nil {
		s.ProgrammingKnowledge = map[string]*Knowledge{}
	}
	for lang, k := range s.ProgrammingKnowledge {
		if k == nil {
			s.ProgrammingKnowledge[lang] = emptyKnowledge()
			continue
		}
		if k.ErrorsFixed == nil {
			k.ErrorsFixed = []FixedError{}
		}
		if k.ConceptsLearned == nil {
			k.ConceptsLearned = []Concept{}
		}
	}
	if s.FriendshipData.FavoriteTopics == nil {
		s.FriendshipData.FavoriteTopics = []string{}
	}
	if s.FriendshipData.PersonalDetails == nil {
		s.FriendshipData.PersonalDetails = map[string]string{}
	}
}

// clone deep-copies the state so callers never alias store internals.
func (s *State) clone() State {
	out := State{
		UserInfo: UserInfo{
			Name:                 s.UserInfo.Name,
			Preferences:          make(map[string]string, len(s.UserInfo.Preferences)),
			ProgrammingLanguages: append([]string{}, s.UserInfo.ProgrammingLanguages...),
		},
		ConversationHistory:  append([]Conversation{}, s.ConversationHistory...),
		LearnedFacts:         make(map[string][]Fact, len(s.LearnedFacts)),
		ProgrammingKnowledge: make(map[string]*Knowledge, len(s.ProgrammingKnowledge)),
		FriendshipData: FriendshipData{
			UserMood:        s.FriendshipData.UserMood,
			FavoriteTopics:  append([]string{}, s.FriendshipData.FavoriteTopics...),
			PersonalDetails: make(map[string]string, len(s.FriendshipData.PersonalDetails)),
		},
		SystemData: s.SystemData,
	}
	for k, v := range s.UserInfo.Preferences {
		out.UserInfo.Preferences[k] = v
	}
	for k, v := range s.LearnedFacts {
		out.LearnedFacts[k] = append([]Fact{}, v...)
	}
	for k, v := range s.ProgrammingKnowledge {
		kc := v.clone()
		out.ProgrammingKnowledge[k] = &kc
	}
	for k, v := range s.FriendshipData.PersonalDetails {
		out.FriendshipData.PersonalDetails[k] = v
	}
	return out
}

func (k *Knowledge) clone() Knowledge {
	return Knowledge{
		ErrorsFixed:     append([]FixedError{}, k.ErrorsFixed...),
		ConceptsLearned: append([]Concept{}, k.ConceptsLearned...),
	}
}
