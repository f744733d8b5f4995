package entities

import (
	"time"

	"homehub/assistant-api/internal/domain/memory"
)

// MemoryFact stores one long-term fact about a user.
type MemoryFact struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;index;not null"`
	Fact      string `gorm:"type:text;not null"`
	Source    string `gorm:"size:32;not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for MemoryFact.
func (MemoryFact) TableName() string {
	return "memory_facts"
}

// EtoD converts the database entity to the domain model.
func (m *MemoryFact) EtoD() *memory.Fact {
	return &memory.Fact{
		ID:        m.ID,
		UserID:    m.UserID,
		Fact:      m.Fact,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
	}
}

// NewSchemaMemoryFact creates a database entity from the domain model.
func NewSchemaMemoryFact(f *memory.Fact) *MemoryFact {
	return &MemoryFact{
		ID:        f.ID,
		UserID:    f.UserID,
		Fact:      f.Fact,
		Source:    f.Source,
		CreatedAt: f.CreatedAt,
	}
}
