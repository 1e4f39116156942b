package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// ledgerTables hold money and history rows. Writes to them are logged at
// info so a payment or finish can be followed without enabling SQL debug.
var ledgerTables = map[string]bool{
	"debts":           true,
	"fillings":        true,
	"deleted_records": true,
}

// QueryLogConfig tunes the database query logger.
type QueryLogConfig struct {
	// Verbose logs every statement at debug.
	Verbose bool
	// SlowThreshold marks statements slower than this; zero disables it.
	SlowThreshold time.Duration
}

// QueryLogger routes gorm output into the request-scoped zap logger.
type QueryLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewQueryLogger(cfg QueryLogConfig) *QueryLogger {
	level := gormlogger.Warn
	if cfg.Verbose {
		level = gormlogger.Info
	}
	return &QueryLogger{level: level, slow: cfg.SlowThreshold}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *QueryLogger) message(ctx context.Context, threshold gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.level < threshold {
		return
	}
	fields := []zap.Field{zap.String("component", "db")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Trace picks one level per statement: failures first, then slow
// statements, then ledger writes, then everything else when verbose.
// A missing row is not a failure; repositories report it as nil.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow
	sql, rows := fc()
	stmt := describeStatement(sql)

	var level zapcore.Level
	switch {
	case err != nil && l.level >= gormlogger.Error:
		level = zapcore.ErrorLevel
	case slow && l.level >= gormlogger.Warn:
		level = zapcore.WarnLevel
	case stmt.ledgerWrite() && l.level >= gormlogger.Warn:
		level = zapcore.InfoLevel
	case l.level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	ce := FromContext(ctx).Check(level, "db.query")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("component", "db"),
		zap.String("operation", stmt.operation),
		zap.String("table", stmt.table),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Bool("slow", slow),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if level != zapcore.InfoLevel {
		fields = append(fields, zap.String("sql", strings.TrimSpace(sql)))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values; customer names and phones are arguments.
func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

type statement struct {
	operation string
	table     string
}

func (s statement) ledgerWrite() bool {
	return s.operation != "SELECT" && ledgerTables[s.table]
}

// describeStatement reads the verb and target table from the top level of a
// statement. Anything inside parentheses, such as a CTE body or a subquery,
// is skipped.
func describeStatement(sql string) statement {
	stmt := statement{operation: "UNKNOWN"}
	tokens := topLevelTokens(sql)
	for i, token := range tokens {
		upper := strings.ToUpper(token)
		switch upper {
		case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
			if stmt.operation == "UNKNOWN" {
				stmt.operation = upper
			}
		}
		if stmt.table != "" || i+1 >= len(tokens) {
			continue
		}
		switch upper {
		case "FROM", "INTO", "UPDATE":
			stmt.table = strings.Trim(tokens[i+1], "\"`;")
		}
	}
	return stmt
}

func topLevelTokens(sql string) []string {
	var (
		tokens  []string
		current strings.Builder
		depth   int
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range sql {
		switch {
		case r == '(':
			flush()
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func operationFromSQL(sql string) string {
	return describeStatement(sql).operation
}

func tableFromSQL(sql string) string {
	return describeStatement(sql).table
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
