// Package storage содержит SQLite-архив последствий боя.
// Раны переживают сессию: завершенный бой пишет снимок ран каждой
// сущности, а следующий бой при GM_ADD_ENTITY поднимает их обратно.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS combat_aftermath (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	combat_id    TEXT NOT NULL,
	campaign_id  TEXT NOT NULL DEFAULT '',
	entity_id    TEXT NOT NULL,
	entity_name  TEXT NOT NULL DEFAULT '',
	alive        INTEGER NOT NULL,
	wounds       TEXT NOT NULL DEFAULT '{}',
	completed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_aftermath_entity
	ON combat_aftermath (entity_id, completed_at);
`

// AftermathStore - архив итогов боев поверх единственного SQLite-файла.
type AftermathStore struct {
	db *sql.DB
}

// Open открывает (и при необходимости создает) файл архива.
func Open(path string) (*AftermathStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open aftermath store: %w", err)
	}
	// Один writer: актор сессии пишет, ручки ГМа читают
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply aftermath schema: %w", err)
	}
	return &AftermathStore{db: db}, nil
}

// Close закрывает соединение с архивом.
func (s *AftermathStore) Close() error {
	return s.db.Close()
}

// SaveAftermath пишет снимок ран всех сущностей завершенного боя.
// Миньоны пропускаются: они ран не ведут.
func (s *AftermathStore) SaveAftermath(state *domain.CombatSession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin aftermath tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for id, e := range state.Entities {
		if e.Tier == domain.TierMinion {
			continue
		}

		wounds, err := json.Marshal(e.Wounds)
		if err != nil {
			return fmt.Errorf("marshal wounds for %s: %w", id, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO combat_aftermath
				(combat_id, campaign_id, entity_id, entity_name, alive, wounds, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			state.ID, state.CampaignID, id, e.Name, boolToInt(e.Alive), string(wounds), now,
		); err != nil {
			return fmt.Errorf("insert aftermath row for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit aftermath tx: %w", err)
	}

	logger.Log.WithField("combat_id", state.ID).Info("Combat aftermath persisted")
	return nil
}

// LoadWounds возвращает раны сущности из последнего завершенного боя.
// Неизвестная сущность - пустой результат, не ошибка.
func (s *AftermathStore) LoadWounds(entityID string) (map[string]int, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT wounds FROM combat_aftermath
		 WHERE entity_id = ?
		 ORDER BY completed_at DESC, id DESC
		 LIMIT 1`,
		entityID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wounds for %s: %w", entityID, err)
	}

	var wounds map[string]int
	if err := json.Unmarshal([]byte(raw), &wounds); err != nil {
		return nil, fmt.Errorf("decode wounds for %s: %w", entityID, err)
	}
	if len(wounds) == 0 {
		return nil, nil
	}
	return wounds, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
