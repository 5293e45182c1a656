package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/demoday/arbiter/internal/domain/model"
	"github.com/demoday/arbiter/pkg/logger"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// migrateModels are the persisted table schemas.
var migrateModels = []any{
	&model.Submission{},
	&model.JudgeScore{},
	&model.VoteLedgerEntry{},
	&model.PrizePoolContribution{},
}

// SqliteStore implements Store on a sqlite database via gorm.
type SqliteStore struct {
	db  *gorm.DB
	log logger.Logger
}

// NewSqliteStore opens (or creates) the database under dataDir and migrates
// the schema. An empty dataDir opens a private in-memory database, which is
// what the tests use.
func NewSqliteStore(dataDir string, log logger.Logger) (*SqliteStore, error) {
	var dsn string
	if dataDir == "" {
		// Unique name so concurrent in-memory stores stay isolated while
		// connections within one store still share the database.
		dsn = fmt.Sprintf("file:arbiter-%s?mode=memory&cache=shared", uuid.NewString())
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		path := filepath.Join(dataDir, "arbiter.sqlite")
		// WAL keeps concurrent request handlers from serializing on fsync.
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SqliteStore{db: db, log: log}
	for _, m := range migrateModels {
		if err := db.AutoMigrate(m); err != nil {
			return nil, fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	if log != nil {
		log.Debug(context.Background(), "sqlite store ready", logger.String("dsn", dsn))
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database: %w", err)
	}
	return sqlDB.Close()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// CreateSubmission inserts a new submission row.
func (s *SqliteStore) CreateSubmission(ctx context.Context, sub model.Submission) error {
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: submission %s", ErrDuplicate, sub.ID)
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetSubmission returns one submission by id.
func (s *SqliteStore) GetSubmission(ctx context.Context, id string) (model.Submission, error) {
	var sub model.Submission
	err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Submission{}, fmt.Errorf("%w: submission %s", ErrNotFound, id)
		}
		return model.Submission{}, fmt.Errorf("failed to load submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions filters by status and category; empty values match all.
func (s *SqliteStore) ListSubmissions(ctx context.Context, status model.Status, category string) ([]model.Submission, error) {
	q := s.db.WithContext(ctx).Order("id asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var subs []model.Submission
	if err := q.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// UpdateSubmissionStatus conditionally advances a submission's status.
func (s *SqliteStore) UpdateSubmissionStatus(ctx context.Context, id string, from, to model.Status, finalScore *float64) error {
	updates := map[string]any{"status": to}
	if finalScore != nil {
		updates["final_score"] = *finalScore
	}
	res := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetSubmission(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: submission %s is no longer %s", ErrConflict, id, from)
	}
	return nil
}

// InsertJudgeScores inserts score rows all-or-nothing.
func (s *SqliteStore) InsertJudgeScores(ctx context.Context, scores []model.JudgeScore) error {
	if len(scores) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range scores {
			if err := tx.Create(&scores[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: judge score", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert judge scores: %w", err)
	}
	return nil
}

// ListJudgeScores returns the rows for one submission and round.
func (s *SqliteStore) ListJudgeScores(ctx context.Context, submissionID string, round int) ([]model.JudgeScore, error) {
	var scores []model.JudgeScore
	err := s.db.WithContext(ctx).
		Where("submission_id = ? AND round = ?", submissionID, round).
		Order("judge_id asc").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list judge scores: %w", err)
	}
	return scores, nil
}

// InsertVote appends a ledger entry plus optional overflow contribution as
// one atomic unit. Duplicate dedupe keys are resolved by the unique index:
// the insert affects zero rows and the overflow is skipped too.
func (s *SqliteStore) InsertVote(ctx context.Context, entry model.VoteLedgerEntry, overflow *model.PrizePoolContribution) (bool, error) {
	inserted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Redelivery; the original transaction already wrote everything.
			return nil
		}
		inserted = true
		if overflow != nil {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(overflow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}
	return inserted, nil
}

// ListVotes returns the ledger entries for one submission in insert order.
func (s *SqliteStore) ListVotes(ctx context.Context, submissionID string) ([]model.VoteLedgerEntry, error) {
	var entries []model.VoteLedgerEntry
	err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return entries, nil
}

// ListAllVotes returns every ledger entry in insert order.
func (s *SqliteStore) ListAllVotes(ctx context.Context) ([]model.VoteLedgerEntry, error) {
	var entries []model.VoteLedgerEntry
	if err := s.db.WithContext(ctx).Order("id asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return entries, nil
}

// InsertContribution appends a prize-pool row if its id is unused.
func (s *SqliteStore) InsertContribution(ctx context.Context, c model.PrizePoolContribution) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&c)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert contribution: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListContributions returns prize-pool rows, optionally by submission.
func (s *SqliteStore) ListContributions(ctx context.Context, submissionID string) ([]model.PrizePoolContribution, error) {
	q := s.db.WithContext(ctx).Order("id asc")
	if submissionID != "" {
		q = q.Where("submission_id = ?", submissionID)
	}
	var out []model.PrizePoolContribution
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return out, nil
}

// SummarizeContributions aggregates the prize pool by source and mint.
func (s *SqliteStore) SummarizeContributions(ctx context.Context) ([]ContributionSummary, error) {
	var out []ContributionSummary
	err := s.db.WithContext(ctx).
		Model(&model.PrizePoolContribution{}).
		Select("source, token_mint, SUM(amount) AS total, COUNT(*) AS count").
		Group("source").
		Group("token_mint").
		Order("source asc, token_mint asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize contributions: %w", err)
	}
	return out, nil
}

// CommitRound2 atomically writes the round 2 rows and the status/final-score
// update. A losing concurrent writer gets ErrConflict with nothing written.
func (s *SqliteStore) CommitRound2(ctx context.Context, submissionID string, from model.Status, finalScore float64, scores []model.JudgeScore) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range scores {
			if err := tx.Create(&scores[i]).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&model.Submission{}).
			Where("id = ? AND status = ?", submissionID, from).
			Updates(map[string]any{
				"status":      model.StatusCompleted,
				"final_score": finalScore,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: submission %s is no longer %s", ErrConflict, submissionID, from)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return err
		}
		if isDuplicate(err) {
			return fmt.Errorf("%w: round 2 scores for %s", ErrDuplicate, submissionID)
		}
		return fmt.Errorf("failed to commit round 2: %w", err)
	}
	return nil
}
