package database

import (
	"context"
	"errors"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseLogger routes GORM output through the core logger.
// Statements are logged parameterized: bound values carry alias tokens and customer data.
type DatabaseLogger struct {
	log           coreport.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	clock         coreport.TimeProvider
}

var (
	_ gormlogger.Interface = (*DatabaseLogger)(nil)
	_ gorm.ParamsFilter    = (*DatabaseLogger)(nil)
)

// NewDatabaseLogger creates a GORM logger. A zero slowThreshold disables slow query warnings.
func NewDatabaseLogger(log coreport.Logger, clock coreport.TimeProvider, level string, slowThreshold time.Duration) *DatabaseLogger {
	return &DatabaseLogger{
		log:           log,
		level:         ParseGormLevel(level),
		slowThreshold: slowThreshold,
		clock:         clock,
	}
}

// ParseGormLevel maps a configured level name onto GORM's levels; unknown names mean info
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}

func (l *DatabaseLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *DatabaseLogger) Info(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(msg, map[string]any{"source": "database"})
	}
}

func (l *DatabaseLogger) Warn(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(msg, map[string]any{"source": "database"})
	}
}

func (l *DatabaseLogger) Error(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(msg, map[string]any{"source": "database"})
	}
}

// ParamsFilter drops bound values so traced SQL keeps its placeholders
func (l *DatabaseLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

// Trace logs failed statements as errors, slow ones as warnings and the rest at debug
func (l *DatabaseLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	if l.clock != nil {
		elapsed = l.clock.Since(begin)
	}

	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	var (
		msg  string
		emit func(string, map[string]any)
	)
	switch {
	case failed && l.level >= gormlogger.Error:
		msg, emit = "SQL error", l.log.Error
	case slow && l.level >= gormlogger.Warn:
		msg, emit = "Slow SQL query", l.log.Warn
	case l.level >= gormlogger.Info:
		msg, emit = "SQL query", l.log.Debug
	default:
		return
	}

	sql, rows := fc()
	verb, table := describeStatement(sql)
	fields := map[string]any{
		"source":     "database",
		"elapsed_ms": elapsed.Milliseconds(),
		"rows":       rows,
		"sql":        sql,
	}
	if verb != "" {
		fields["verb"] = verb
	}
	if table != "" {
		fields["table"] = table
	}
	if failed {
		fields["error"] = err.Error()
	}
	emit(msg, fields)
}

// describeStatement returns the leading verb of sql and the first table it names
func describeStatement(sql string) (verb, table string) {
	words := strings.Fields(sql)
	if len(words) == 0 {
		return "", ""
	}
	verb = strings.ToUpper(words[0])

	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(words) > 1 {
			return verb, cleanIdentifier(words[1])
		}
		return verb, ""
	default:
		return "", ""
	}

	for i := 1; i < len(words)-1; i++ {
		if strings.EqualFold(words[i], marker) {
			return verb, cleanIdentifier(words[i+1])
		}
	}
	return verb, ""
}

func cleanIdentifier(word string) string {
	if i := strings.IndexByte(word, '('); i >= 0 {
		word = word[:i]
	}
	return strings.Trim(word, "\"`")
}
