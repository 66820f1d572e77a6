package mission

import "sync"

type WorkingMemory struct {
	CurrentMission string   `json:"current_mission"`
	RecentTasks    []string `json:"recent_tasks"`
	ContextSummary string   `json:"context_summary"`
}

type LongTermMemory struct {
	SavedMaps     []string `json:"saved_maps"`
	KnowledgeBase []string `json:"knowledge_base"`
}

type Memory struct {
	Working  WorkingMemory  `json:"working_memory"`
	LongTerm LongTermMemory `json:"long_term_memory"`
}

// Session is the orchestrator's memory across missions.
type Session struct {
	mu     sync.RWMutex
	memory Memory
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = Memory{
		Working: WorkingMemory{RecentTasks: []string{}},
		LongTerm: LongTermMemory{
			SavedMaps:     []string{},
			KnowledgeBase: []string{},
		},
	}
}

func (s *Session) begin(mission string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Working.CurrentMission = mission
	s.memory.Working.ContextSummary = ""
}

func (s *Session) recordTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Working.RecentTasks = append(s.memory.Working.RecentTasks, id)
}

func (s *Session) finish(summary, rootID string, findings []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Working.ContextSummary = summary
	if rootID != "" {
		s.memory.LongTerm.SavedMaps = append(s.memory.LongTerm.SavedMaps, rootID)
	}
	s.memory.LongTerm.KnowledgeBase = append(s.memory.LongTerm.KnowledgeBase, findings...)
}

func (s *Session) CurrentMission() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memory.Working.CurrentMission
}

// Snapshot returns a copy safe to hand out.
func (s *Session) Snapshot() Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.memory
	m.Working.RecentTasks = append([]string{}, m.Working.RecentTasks...)
	m.LongTerm.SavedMaps = append([]string{}, m.LongTerm.SavedMaps...)
	m.LongTerm.KnowledgeBase = append([]string{}, m.LongTerm.KnowledgeBase...)
	return m
}
