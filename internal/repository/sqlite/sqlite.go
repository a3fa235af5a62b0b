package sqlite

import (
	"strings"
	"time"

	"log/slog"

	"github.com/garnizeh/quizflag/internal/db"
	"github.com/garnizeh/quizflag/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.ChallengeRepo = (*SQLiteRepo)(nil)
var _ repository.QuestionRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// isUniqueViolation classifies sqlite unique constraint failures by message.
// modernc.org/sqlite does not export typed constraint errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
